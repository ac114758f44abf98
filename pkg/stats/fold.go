package stats

import (
	"fmt"
	"sort"
	"time"

	"github.com/meridian-network/stationstats/pkg/db/models"
)

type detailKey struct {
	stationID     string
	participantID int64
}

type subnetKey struct {
	participantID int64
	subnet        string
}

// BatchDeltas is the result of folding one measurement batch: the additive
// detail increments plus the three sets the batch touches. Slices are
// sorted so the resulting upsert batches are deterministic.
type BatchDeltas struct {
	Details        []models.StationDetail
	ActiveStations []models.ActiveStation
	Subnets        []models.ParticipantSubnet
	ParticipantIDs []int64
}

// FoldMeasurements reduces a measurement batch into per-(station,
// participant) count deltas, the day's active-station set, the day's
// participant-subnet set, and the distinct participant ids seen.
//
// Every measurement increments total; only accepted ones (tasked OK and
// majority result) increment accepted. Stations are active regardless of
// acceptance. Subnets are recorded only for measurements that were actually
// evaluated. A participant address missing from the id mapping is a caller
// contract violation and fails the whole fold.
func FoldMeasurements(batch []Measurement, ids map[string]int64, day time.Time) (*BatchDeltas, error) {
	day = DayOf(day)

	details := make(map[detailKey]*models.StationDetail)
	stations := make(map[string]bool)
	subnets := make(map[subnetKey]bool)
	participants := make(map[int64]bool)

	for i, m := range batch {
		participantID, ok := ids[m.ParticipantAddress]
		if !ok {
			return nil, fmt.Errorf("measurement %d: participant address %q missing from id mapping", i, m.ParticipantAddress)
		}

		key := detailKey{stationID: m.StationID, participantID: participantID}
		d := details[key]
		if d == nil {
			d = &models.StationDetail{
				Day:           day,
				StationID:     m.StationID,
				ParticipantID: participantID,
			}
			details[key] = d
		}
		d.TotalMeasurementCount++
		if m.Accepted() {
			d.AcceptedMeasurementCount++
		}

		stations[m.StationID] = true
		participants[participantID] = true

		if m.Evaluated() {
			subnets[subnetKey{participantID: participantID, subnet: m.InetGroup}] = true
		}
	}

	deltas := &BatchDeltas{
		Details:        make([]models.StationDetail, 0, len(details)),
		ActiveStations: make([]models.ActiveStation, 0, len(stations)),
		Subnets:        make([]models.ParticipantSubnet, 0, len(subnets)),
		ParticipantIDs: make([]int64, 0, len(participants)),
	}

	for _, d := range details {
		deltas.Details = append(deltas.Details, *d)
	}
	sort.Slice(deltas.Details, func(i, j int) bool {
		a, b := deltas.Details[i], deltas.Details[j]
		if a.StationID != b.StationID {
			return a.StationID < b.StationID
		}
		return a.ParticipantID < b.ParticipantID
	})

	for stationID := range stations {
		deltas.ActiveStations = append(deltas.ActiveStations, models.ActiveStation{Day: day, StationID: stationID})
	}
	sort.Slice(deltas.ActiveStations, func(i, j int) bool {
		return deltas.ActiveStations[i].StationID < deltas.ActiveStations[j].StationID
	})

	for key := range subnets {
		deltas.Subnets = append(deltas.Subnets, models.ParticipantSubnet{
			Day:           day,
			ParticipantID: key.participantID,
			Subnet:        key.subnet,
		})
	}
	sort.Slice(deltas.Subnets, func(i, j int) bool {
		a, b := deltas.Subnets[i], deltas.Subnets[j]
		if a.ParticipantID != b.ParticipantID {
			return a.ParticipantID < b.ParticipantID
		}
		return a.Subnet < b.Subnet
	})

	for id := range participants {
		deltas.ParticipantIDs = append(deltas.ParticipantIDs, id)
	}
	sort.Slice(deltas.ParticipantIDs, func(i, j int) bool {
		return deltas.ParticipantIDs[i] < deltas.ParticipantIDs[j]
	})

	return deltas, nil
}

// DistinctAddresses returns the sorted distinct participant addresses of a
// batch, the input for the identity mapper.
func DistinctAddresses(batch []Measurement) []string {
	seen := make(map[string]bool, len(batch))
	out := make([]string, 0, len(batch))
	for _, m := range batch {
		if !seen[m.ParticipantAddress] {
			seen[m.ParticipantAddress] = true
			out = append(out, m.ParticipantAddress)
		}
	}
	sort.Strings(out)
	return out
}
