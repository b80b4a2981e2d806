package store

import (
	"testing"
	"time"

	"github.com/blackwell-systems/courtside/internal/metrics"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func sampleLog() metrics.GameLog {
	date := time.Date(2024, time.November, 3, 0, 0, 0, 0, time.UTC)
	return metrics.GameLog{
		Rows: []metrics.TeamGameRow{
			{GameID: "0022400101", GameDate: date, TeamID: 1610612738, TeamAbbreviation: "BOS",
				TeamName: "Boston Celtics", Matchup: "BOS vs. NYK", WL: "W",
				FGM: 42, FGA: 88, FG3M: 15, FG3A: 40, FTM: 16, FTA: 20, OREB: 10, DREB: 35,
				AST: 26, STL: 7, BLK: 5, TOV: 12, PF: 18, PTS: 115, MIN: 240},
			{GameID: "0022400101", GameDate: date, TeamID: 1610612752, TeamAbbreviation: "NYK",
				Matchup: "NYK @ BOS", WL: "L",
				FGM: 40, FGA: 90, FG3M: 11, FG3A: 33, FTM: 17, FTA: 22, OREB: 12, DREB: 31,
				AST: 22, STL: 6, BLK: 3, TOV: 14, PF: 20, PTS: 108, MIN: 240},
		},
	}
}

func TestMigrateSetsVersion(t *testing.T) {
	db := openTestDB(t)
	v, err := db.SchemaVersion()
	if err != nil {
		t.Fatalf("SchemaVersion: %v", err)
	}
	if v != currentSchemaVersion {
		t.Errorf("SchemaVersion = %d, want %d", v, currentSchemaVersion)
	}

	// running again is a no-op
	if err := db.Migrate(); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}
}

func TestSaveAndLoadGameLog(t *testing.T) {
	db := openTestDB(t)
	fetchedAt := time.Date(2024, time.November, 4, 12, 0, 0, 0, time.UTC)

	id, err := db.SaveGameLog("2024-25", "Regular Season", "stats.nba.com", fetchedAt, sampleLog())
	if err != nil {
		t.Fatalf("SaveGameLog: %v", err)
	}

	f, err := db.LatestFetch("2024-25", "Regular Season")
	if err != nil {
		t.Fatalf("LatestFetch: %v", err)
	}
	if f == nil || f.ID != id {
		t.Fatalf("LatestFetch = %+v, want id %d", f, id)
	}
	if f.RowCount != 2 {
		t.Errorf("RowCount = %d, want 2", f.RowCount)
	}
	if !f.FetchedAt.Equal(fetchedAt) {
		t.Errorf("FetchedAt = %v, want %v", f.FetchedAt, fetchedAt)
	}
	if len(f.Columns) != len(metrics.FeedColumns) {
		t.Errorf("Columns = %d entries, want %d", len(f.Columns), len(metrics.FeedColumns))
	}

	log, err := db.LoadGameLog(id)
	if err != nil {
		t.Fatalf("LoadGameLog: %v", err)
	}
	want := sampleLog().Rows
	if len(log.Rows) != len(want) {
		t.Fatalf("loaded %d rows, want %d", len(log.Rows), len(want))
	}
	for i := range want {
		got := log.Rows[i]
		if !got.GameDate.Equal(want[i].GameDate) {
			t.Errorf("row %d GameDate = %v, want %v", i, got.GameDate, want[i].GameDate)
		}
		got.GameDate = want[i].GameDate
		if got != want[i] {
			t.Errorf("row %d = %+v, want %+v", i, got, want[i])
		}
	}
	if !log.Columns.Has(metrics.ColMIN) {
		t.Error("loaded column set is missing MIN")
	}
}

func TestSaveKeepsColumnSet(t *testing.T) {
	db := openTestDB(t)
	in := sampleLog()
	in.Columns = metrics.NewColumnSet(metrics.ColGameID, metrics.ColGameDate, metrics.ColTeamAbbr, metrics.ColPTS)

	id, err := db.SaveGameLog("2024-25", "Regular Season", "csv", time.Now(), in)
	if err != nil {
		t.Fatalf("SaveGameLog: %v", err)
	}
	log, err := db.LoadGameLog(id)
	if err != nil {
		t.Fatalf("LoadGameLog: %v", err)
	}
	if len(log.Columns) != 4 {
		t.Errorf("Columns = %v, want 4 entries", log.Columns.Sorted())
	}
	if log.Columns.Has(metrics.ColFGA) {
		t.Error("FGA should not be recorded as supplied")
	}
}

func TestLatestFetchNone(t *testing.T) {
	db := openTestDB(t)
	f, err := db.LatestFetch("1999-00", "Regular Season")
	if err != nil {
		t.Fatalf("LatestFetch: %v", err)
	}
	if f != nil {
		t.Errorf("LatestFetch = %+v, want nil", f)
	}

	if _, err := db.LoadGameLog(42); err == nil {
		t.Error("LoadGameLog of a missing fetch should fail")
	}
}

func TestListAndPruneFetches(t *testing.T) {
	db := openTestDB(t)
	base := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

	var ids []int64
	for i := 0; i < 4; i++ {
		id, err := db.SaveGameLog("2024-25", "Regular Season", "stats.nba.com", base.Add(time.Duration(i)*time.Hour), sampleLog())
		if err != nil {
			t.Fatalf("SaveGameLog %d: %v", i, err)
		}
		ids = append(ids, id)
	}
	if _, err := db.SaveGameLog("2023-24", "Regular Season", "stats.nba.com", base, sampleLog()); err != nil {
		t.Fatalf("SaveGameLog other season: %v", err)
	}

	all, err := db.ListFetches()
	if err != nil {
		t.Fatalf("ListFetches: %v", err)
	}
	if len(all) != 5 {
		t.Fatalf("ListFetches = %d, want 5", len(all))
	}
	if all[0].ID != ids[3] {
		t.Errorf("newest fetch = %d, want %d", all[0].ID, ids[3])
	}

	removed, err := db.PruneFetches("2024-25", "Regular Season", 1)
	if err != nil {
		t.Fatalf("PruneFetches: %v", err)
	}
	if removed != 3 {
		t.Errorf("PruneFetches removed %d, want 3", removed)
	}

	latest, err := db.LatestFetch("2024-25", "Regular Season")
	if err != nil || latest == nil || latest.ID != ids[3] {
		t.Fatalf("LatestFetch after prune = %+v, %v; want id %d", latest, err, ids[3])
	}

	var orphans int
	if err := db.Conn().QueryRow(
		"SELECT COUNT(*) FROM team_games WHERE fetch_id NOT IN (SELECT id FROM feed_fetches)",
	).Scan(&orphans); err != nil {
		t.Fatalf("counting orphans: %v", err)
	}
	if orphans != 0 {
		t.Errorf("orphaned team_games rows = %d, want 0", orphans)
	}

	other, err := db.LatestFetch("2023-24", "Regular Season")
	if err != nil || other == nil {
		t.Errorf("other season was pruned: %+v, %v", other, err)
	}
}
