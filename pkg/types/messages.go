package types

// Client -> Server (websocket message or POST /actions body)
// Every action:
//   type: string
//   side: "home" | "guest" | "left" | "right" // left/right follow the current orientation
//   undo: boolean // AddPoint, StartTimeout, AddSub, AddVideoCheck become their decrement
//
// Setup:
//   setup: { homeName, guestName, homeColor, guestColor: string,
//            homeOnRight: boolean, firstServe: "left" | "right", startTime: "HH:MM" }
//
// StartMatch:
//   rules: { matchType: "bestOf3" | "bestOf5" | "fixed3" | "fixed5",
//            setPoints, tieBreakPoints, minDiffSets, minDiffTieBreak,
//            maxTimeouts, maxSubs, maxVideoChecks,
//            timeoutDuration, intervalDuration, tieBreakSwapPoint: number | numeric string,
//            sideSwitchMode: "standard" | "new" | "never",
//            tieBreakSwapEnabled, tieBreakSwapAnim: boolean } // optional, missing keys take the defaults
//
// AddPoint | SubPoint | AddSub | SubSub | AddVideoCheck | SubVideoCheck |
// StartTimeout | SubTimeout | SetServing:
//   side (required)
//
// AdjustSets:
//   side (required)
//   delta: number // defaults to +1, or -1 with undo
//
// SwapSides | DismissOverlay | Reset: {}

// Server -> Client
// StateSnapshot: pushed on join and after every accepted change
//   version: number
//   view: View (see snapshot.go)
//
// Error: malformed or unknown action; nothing was enqueued
//   error: string
