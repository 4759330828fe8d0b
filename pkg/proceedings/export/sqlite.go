package export

import (
	"context"
	"crypto/rand"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/oldbailey/proceedings/pkg/proceedings/corpus"
	"github.com/oldbailey/proceedings/pkg/proceedings/trial"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	created_at TEXT NOT NULL,
	min_year INTEGER NOT NULL,
	max_year INTEGER NOT NULL,
	total_trials INTEGER NOT NULL,
	skipped_trials INTEGER NOT NULL,
	corrected_trials INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS trials (
	id TEXT PRIMARY KEY,
	run_id TEXT NOT NULL,
	date TEXT NOT NULL,
	corrected INTEGER NOT NULL,
	FOREIGN KEY(run_id) REFERENCES runs(id)
);

CREATE TABLE IF NOT EXISTS persons (
	trial_id TEXT NOT NULL,
	id TEXT NOT NULL,
	role TEXT NOT NULL,
	name TEXT,
	gender TEXT,
	age INTEGER,
	occupation TEXT,
	working_class INTEGER,
	skilled INTEGER,
	PRIMARY KEY(trial_id, id, role),
	FOREIGN KEY(trial_id) REFERENCES trials(id)
);

CREATE TABLE IF NOT EXISTS offences (
	trial_id TEXT NOT NULL,
	id TEXT NOT NULL,
	category TEXT NOT NULL,
	subcategory TEXT,
	description TEXT,
	PRIMARY KEY(trial_id, id),
	FOREIGN KEY(trial_id) REFERENCES trials(id)
);

CREATE TABLE IF NOT EXISTS offence_victims (
	trial_id TEXT NOT NULL,
	offence_id TEXT NOT NULL,
	person_id TEXT NOT NULL,
	FOREIGN KEY(trial_id) REFERENCES trials(id)
);

CREATE TABLE IF NOT EXISTS verdicts (
	trial_id TEXT NOT NULL,
	id TEXT NOT NULL,
	category TEXT NOT NULL,
	subcategory TEXT,
	PRIMARY KEY(trial_id, id),
	FOREIGN KEY(trial_id) REFERENCES trials(id)
);

CREATE TABLE IF NOT EXISTS punishments (
	trial_id TEXT NOT NULL,
	id TEXT NOT NULL,
	category TEXT NOT NULL,
	subcategory TEXT,
	description TEXT,
	PRIMARY KEY(trial_id, id),
	FOREIGN KEY(trial_id) REFERENCES trials(id)
);

CREATE TABLE IF NOT EXISTS punishment_defendants (
	trial_id TEXT NOT NULL,
	punishment_id TEXT NOT NULL,
	person_id TEXT NOT NULL,
	FOREIGN KEY(trial_id) REFERENCES trials(id)
);

CREATE TABLE IF NOT EXISTS charges (
	trial_id TEXT NOT NULL,
	seq INTEGER NOT NULL,
	verdict_id TEXT NOT NULL,
	PRIMARY KEY(trial_id, seq),
	FOREIGN KEY(trial_id) REFERENCES trials(id)
);

CREATE TABLE IF NOT EXISTS charge_defendants (
	trial_id TEXT NOT NULL,
	charge_seq INTEGER NOT NULL,
	person_id TEXT NOT NULL,
	FOREIGN KEY(trial_id) REFERENCES trials(id)
);

CREATE TABLE IF NOT EXISTS charge_offences (
	trial_id TEXT NOT NULL,
	charge_seq INTEGER NOT NULL,
	offence_id TEXT NOT NULL,
	FOREIGN KEY(trial_id) REFERENCES trials(id)
);
`

// WriteSQLite materializes a corpus run as a relational SQLite file, one
// run row plus the full entity graph. The file is a flat export: written
// once, never read back by this system.
func WriteSQLite(ctx context.Context, path string, byDate corpus.ByDate, minYear, maxYear int) (string, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return "", err
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		return "", err
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		return "", err
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		return "", fmt.Errorf("create export schema: %w", err)
	}

	runID := ulid.MustNew(ulid.Now(), rand.Reader).String()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	total, skipped, corrected := 0, 0, 0
	for _, trials := range byDate {
		for _, td := range trials {
			total++
			switch {
			case td == nil:
				skipped++
			case td.Corrected:
				corrected++
			}
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, created_at, min_year, max_year, total_trials, skipped_trials, corrected_trials)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		runID, time.Now().UTC().Format(time.RFC3339), minYear, maxYear, total, skipped, corrected); err != nil {
		return "", fmt.Errorf("insert run row: %w", err)
	}

	for _, date := range sortedDates(byDate) {
		for _, td := range byDate[date] {
			if td == nil {
				continue
			}
			if err := insertTrial(ctx, tx, runID, td); err != nil {
				return "", fmt.Errorf("export trial %s: %w", td.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return runID, nil
}

func insertTrial(ctx context.Context, tx *sql.Tx, runID string, td *trial.TrialData) error {
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO trials (id, run_id, date, corrected) VALUES (?, ?, ?, ?)`,
		td.ID, runID, td.Date.Format("2006-01-02"), boolInt(td.Corrected)); err != nil {
		return err
	}

	if err := insertPersons(ctx, tx, td.ID, "defendant", td.Defendants); err != nil {
		return err
	}
	if err := insertPersons(ctx, tx, td.ID, "victim", td.Victims); err != nil {
		return err
	}

	for _, id := range sortedIDs(td.Offences) {
		off := td.Offences[id]
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO offences (trial_id, id, category, subcategory, description) VALUES (?, ?, ?, ?, ?)`,
			td.ID, off.ID, off.Category, nullString(off.Subcategory), off.Description); err != nil {
			return err
		}
		for _, v := range off.Victims {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO offence_victims (trial_id, offence_id, person_id) VALUES (?, ?, ?)`,
				td.ID, off.ID, v.ID); err != nil {
				return err
			}
		}
	}

	for _, id := range sortedIDs(td.Verdicts) {
		v := td.Verdicts[id]
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO verdicts (trial_id, id, category, subcategory) VALUES (?, ?, ?, ?)`,
			td.ID, v.ID, v.Category, nullString(v.Subcategory)); err != nil {
			return err
		}
	}

	for _, id := range sortedIDs(td.Punishments) {
		p := td.Punishments[id]
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO punishments (trial_id, id, category, subcategory, description) VALUES (?, ?, ?, ?, ?)`,
			td.ID, p.ID, p.Category, nullString(p.Subcategory), p.Description); err != nil {
			return err
		}
		for _, d := range p.Defendants {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO punishment_defendants (trial_id, punishment_id, person_id) VALUES (?, ?, ?)`,
				td.ID, p.ID, d.ID); err != nil {
				return err
			}
		}
	}

	for seq, ch := range td.Charges {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO charges (trial_id, seq, verdict_id) VALUES (?, ?, ?)`,
			td.ID, seq, ch.Verdict.ID); err != nil {
			return err
		}
		for _, d := range ch.Defendants {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO charge_defendants (trial_id, charge_seq, person_id) VALUES (?, ?, ?)`,
				td.ID, seq, d.ID); err != nil {
				return err
			}
		}
		for _, o := range ch.Offences {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO charge_offences (trial_id, charge_seq, offence_id) VALUES (?, ?, ?)`,
				td.ID, seq, o.ID); err != nil {
				return err
			}
		}
	}
	return nil
}

func insertPersons(ctx context.Context, tx *sql.Tx, trialID, role string, persons map[string]*trial.Person) error {
	for _, id := range sortedIDs(persons) {
		p := persons[id]
		occName, wc, skilled := occupationColumns(p)
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO persons (trial_id, id, role, name, gender, age, occupation, working_class, skilled)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			trialID, p.ID, role, p.Name, nullString(p.Gender), nullIntPtr(p.Age),
			occName, wc, skilled); err != nil {
			return err
		}
	}
	return nil
}

func occupationColumns(p *trial.Person) (any, any, any) {
	if p.Occ.Occupation != nil {
		occ := p.Occ.Occupation
		return occ.Name, nullBoolPtr(occ.WorkingClass), nullBoolPtr(occ.Skilled)
	}
	return nullString(p.Occ.Raw), nil, nil
}

func sortedDates(byDate corpus.ByDate) []time.Time {
	dates := make([]time.Time, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}

func sortedIDs[E any](m map[string]E) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullIntPtr(n *int) any {
	if n == nil {
		return nil
	}
	return *n
}

func nullBoolPtr(b *bool) any {
	if b == nil {
		return nil
	}
	return boolInt(*b)
}
