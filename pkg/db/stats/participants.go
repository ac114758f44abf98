package stats

import (
	"context"
	"fmt"
	"sort"
)

// MapParticipantIDs returns an address -> id mapping covering every address
// in the input. Unknown addresses are inserted in a single batch; already
// known addresses keep their existing id. Safe to call concurrently: a lost
// insert race is resolved by re-reading the winner's row.
func (db *DB) MapParticipantIDs(ctx context.Context, addresses []string) (map[string]int64, error) {
	ids := make(map[string]int64, len(addresses))
	if len(addresses) == 0 {
		return ids, nil
	}

	distinct := dedupAddresses(addresses)

	if err := db.selectParticipantIDs(ctx, distinct, ids); err != nil {
		return nil, err
	}

	missing := missingAddresses(distinct, ids)
	if len(missing) == 0 {
		return ids, nil
	}

	// One batch insert for all unknown addresses. DO NOTHING keeps the
	// existing row (and id) when another writer got there first; RETURNING
	// only yields the rows this statement actually inserted.
	insert := `
		INSERT INTO participants (address)
		SELECT UNNEST($1::TEXT[])
		ON CONFLICT (address) DO NOTHING
		RETURNING id, address
	`
	rows, err := db.Client.Query(ctx, insert, missing)
	if err != nil {
		return nil, fmt.Errorf("failed to insert participants: %w", err)
	}
	for rows.Next() {
		var id int64
		var address string
		if err := rows.Scan(&id, &address); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan inserted participant: %w", err)
		}
		ids[address] = id
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	// Rows that conflicted were inserted by a concurrent caller; read them
	// back so the mapping covers every input address.
	if still := missingAddresses(distinct, ids); len(still) > 0 {
		if err := db.selectParticipantIDs(ctx, still, ids); err != nil {
			return nil, err
		}
		if still = missingAddresses(distinct, ids); len(still) > 0 {
			return nil, fmt.Errorf("failed to map %d participant addresses", len(still))
		}
	}

	return ids, nil
}

func (db *DB) selectParticipantIDs(ctx context.Context, addresses []string, into map[string]int64) error {
	query := `SELECT id, address FROM participants WHERE address = ANY($1)`
	rows, err := db.Client.Query(ctx, query, addresses)
	if err != nil {
		return fmt.Errorf("failed to query participants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var address string
		if err := rows.Scan(&id, &address); err != nil {
			return fmt.Errorf("failed to scan participant: %w", err)
		}
		into[address] = id
	}
	return rows.Err()
}

func dedupAddresses(addresses []string) []string {
	seen := make(map[string]bool, len(addresses))
	out := make([]string, 0, len(addresses))
	for _, a := range addresses {
		if !seen[a] {
			seen[a] = true
			out = append(out, a)
		}
	}
	sort.Strings(out)
	return out
}

func missingAddresses(addresses []string, ids map[string]int64) []string {
	var missing []string
	for _, a := range addresses {
		if _, ok := ids[a]; !ok {
			missing = append(missing, a)
		}
	}
	return missing
}
