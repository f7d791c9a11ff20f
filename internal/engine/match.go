package engine

// CurrentSetNumber is 1-based.
func CurrentSetNumber(s State) int {
	return s.Sides[Home].Sets + s.Sides[Guest].Sets + 1
}

func IsTieBreakSet(r Rules, setNumber int) bool {
	return FormatOf(r.MatchType).TieBreakSet == setNumber
}

// TargetSetsToWin is unreachable for fixed-length formats.
func TargetSetsToWin(r Rules) int {
	return FormatOf(r.MatchType).SetsToWin
}

func TotalSetsInMatch(r Rules) int {
	return FormatOf(r.MatchType).TotalSets
}

// CompletedSets counts only sets that were played to a result.
func CompletedSets(s State) int {
	return len(s.Sides[Home].SetScores)
}

// checkSetWin closes the current set if scorer has reached the target with
// the required margin.
func checkSetWin(s *State, scorer SideID) []Event {
	setNum := CurrentSetNumber(*s)
	target, minDiff := s.Rules.SetPoints, s.Rules.MinDiffSets
	if IsTieBreakSet(s.Rules, setNum) {
		target, minDiff = s.Rules.TieBreakPoints, s.Rules.MinDiffTieBreak
	}

	own, opp := s.Side(scorer), s.Side(scorer.Other())
	if own.Score < target || own.Score-opp.Score < minDiff {
		return nil
	}

	home, guest := s.Side(Home), s.Side(Guest)
	events := []Event{{
		Type:       EvtSetWon,
		Side:       scorer,
		Set:        setNum,
		HomeScore:  home.Score,
		GuestScore: guest.Score,
	}}
	home.SetScores = append(home.SetScores, home.Score)
	guest.SetScores = append(guest.SetScores, guest.Score)
	own.Sets++
	home.Score, guest.Score = 0, 0
	s.History.TieBreakSwapDone = false

	events = append(events, checkMatchEnd(s)...)
	if !s.MatchEnded {
		events = append(events, startTimer(s, TimerInterval, s.Rules.IntervalDuration, LabelInterval)...)
	}
	events = append(events, switchAfterSet(s, setNum)...)
	return events
}

func checkMatchEnd(s *State) []Event {
	home, guest := s.Sides[Home].Sets, s.Sides[Guest].Sets

	if s.Rules.MatchType.Fixed() {
		if CompletedSets(*s) < TotalSetsInMatch(s.Rules) {
			return nil
		}
		switch {
		case home == guest:
			s.Winner = OutcomeDraw
		case home > guest:
			s.Winner = OutcomeHome
		default:
			s.Winner = OutcomeGuest
		}
	} else {
		target := TargetSetsToWin(s.Rules)
		if home < target && guest < target {
			return nil
		}
		s.Winner = outcomeFor(Guest)
		if home > guest {
			s.Winner = outcomeFor(Home)
		}
	}

	s.MatchEnded = true
	return []Event{{Type: EvtMatchEnded, Winner: s.Winner}}
}

// checkTieBreakSwap swaps ends once per tie-break set when the combined score
// reaches the configured point.
func checkTieBreakSwap(s *State) []Event {
	if !IsTieBreakSet(s.Rules, CurrentSetNumber(*s)) {
		return nil
	}
	if !s.Rules.TieBreakSwapEnabled || s.History.TieBreakSwapDone {
		return nil
	}
	point := s.Rules.TieBreakSwapPoint
	if point <= 0 {
		point = DefaultRules().TieBreakSwapPoint
	}
	if s.Sides[Home].Score+s.Sides[Guest].Score < point {
		return nil
	}
	s.History.TieBreakSwapDone = true
	return swapSides(s, s.Rules.TieBreakSwapAnim)
}

func switchAfterSet(s *State, finishedSet int) []Event {
	switch s.Rules.SideSwitchMode {
	case SwitchStandard:
		return swapSides(s, true)
	case SwitchNew:
		if finishedSet%2 == 0 {
			return swapSides(s, true)
		}
	}
	return nil
}

func swapSides(s *State, animate bool) []Event {
	s.HomeIsOnRight = !s.HomeIsOnRight
	return []Event{{Type: EvtSidesSwapped, Animate: animate}}
}
