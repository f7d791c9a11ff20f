package engine

// noEarlyWin is the set target for fixed-length formats, which only end
// once every scheduled set is played.
const noEarlyWin = 99

type Format struct {
	TotalSets   int
	SetsToWin   int
	TieBreakSet int
}

var formats = map[MatchType]Format{
	BestOf3: {TotalSets: 3, SetsToWin: 2, TieBreakSet: 3},
	BestOf5: {TotalSets: 5, SetsToWin: 3, TieBreakSet: 5},
	Fixed3:  {TotalSets: 3, SetsToWin: noEarlyWin, TieBreakSet: 3},
	Fixed5:  {TotalSets: 5, SetsToWin: noEarlyWin, TieBreakSet: 5},
}

// FormatOf returns the set layout for a match type, falling back to best of five.
func FormatOf(mt MatchType) Format {
	if f, ok := formats[mt]; ok {
		return f
	}
	return formats[BestOf5]
}

func (mt MatchType) Fixed() bool { return mt == Fixed3 || mt == Fixed5 }
