package metrics

import (
	"fmt"
	"time"
)

var day0 = time.Date(2024, time.October, 22, 0, 0, 0, 0, time.UTC)

// box builds a row with the given counting stats; remaining fields are zero.
func box(game, team string, day int, pts, fgm, fga, fg3m, fta, oreb, tov, ast int) TeamGameRow {
	return TeamGameRow{
		GameID:           game,
		GameDate:         day0.AddDate(0, 0, day),
		TeamAbbreviation: team,
		FGM:              fgm,
		FGA:              fga,
		FG3M:             fg3m,
		FTA:              fta,
		OREB:             oreb,
		TOV:              tov,
		AST:              ast,
		PTS:              pts,
		MIN:              240,
	}
}

// game builds both rows of one game. The home team wins when homePts > awayPts.
func game(id string, day int, home, away string, homePts, awayPts int) []TeamGameRow {
	h := box(id, home, day, homePts, homePts/2-5, 88, 12, 22, 10, 13, 25)
	a := box(id, away, day, awayPts, awayPts/2-5, 90, 11, 20, 11, 14, 23)
	if homePts > awayPts {
		h.WL, a.WL = "W", "L"
	} else {
		h.WL, a.WL = "L", "W"
	}
	return []TeamGameRow{h, a}
}

// season builds a deterministic round robin for teams, each pairing played
// rounds times on consecutive days. Scores depend only on team order.
func season(teams []string, rounds int) GameLog {
	var rows []TeamGameRow
	day, n := 0, 0
	for r := 0; r < rounds; r++ {
		for i := 0; i < len(teams); i++ {
			for j := i + 1; j < len(teams); j++ {
				n++
				homePts := 100 + 4*(len(teams)-i) + (r % 3)
				awayPts := 100 + 4*(len(teams)-j) + ((r + 1) % 3)
				rows = append(rows, game(fmt.Sprintf("G%04d", n), day, teams[i], teams[j], homePts, awayPts)...)
				day++
			}
		}
	}
	return GameLog{Rows: rows}
}
