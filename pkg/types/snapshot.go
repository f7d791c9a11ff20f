package types

// View:
//   state: {
//     homeIsOnRight, setupCompleted, matchActive, matchEnded: boolean
//     winner: null | "home" | "guest" | "draw"
//     serving: "home" | "guest" | null
//     startTime: "HH:MM" // optional
//     history: { setStarters: ("home" | "guest")[], tieBreakSwapDone: boolean }
//     timer: { active, visible: boolean, type: null | "timeout" | "interval" | "match_start",
//              seconds, totalSeconds: number, label: string }
//     rules: Rules (see messages.go)
//     sides: { home: Side, guest: Side } // Side: name, color, score, sets, timeouts, subs, videoChecks, setScores[]
//   }
//   left, right: "home" | "guest"
//   setNumber: number
//   tieBreak: boolean
//   overlay: "" | "timeout" | "interval" | "match_start" | "winner"
//   countdown: "M:SS" | "HH:MM:SS"
//   winnerName: string // team name, or "DRAW"
//   setTable: { set, home, guest: number, label: "h - g" }[]
//
// Persisted record (key "scoreboard_state_v1"):
//   { schema: 1, state: View.state }
