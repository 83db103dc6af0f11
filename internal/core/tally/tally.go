// Package tally is the one place vote aggregation happens. The closure-time
// result generation, on-demand result queries and live analytics all call
// Compute so their numbers can never drift apart.
package tally

import (
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/pickme/voting/internal/core/domain"
)

// Tallied is the aggregated outcome for one session, keyed by position name.
type Tallied struct {
	Breakdown map[string][]domain.CandidateStanding
	Winners   map[string]*domain.Winner
}

// Compute aggregates a ballot ledger into per-position standings and winners.
// It is pure and order-independent over ballots: the same ballot set always
// produces the same output regardless of cast order.
//
// Every position appears in the output, including positions with zero
// ballots, which map to standings with zero votes and a nil winner. The
// winner of a position is the candidate with the strictly greatest count;
// ties keep the first candidate in creation order (deterministic, since
// candidates are iterated in the order given, not in map order).
func Compute(ballots []domain.Ballot, candidates []domain.Candidate, positions []domain.Position) Tallied {
	counts := make(map[uuid.UUID]int64, len(candidates))
	for _, b := range ballots {
		counts[b.CandidateID]++
	}

	byPosition := make(map[uuid.UUID][]domain.Candidate, len(positions))
	for _, c := range candidates {
		byPosition[c.PositionID] = append(byPosition[c.PositionID], c)
	}

	t := Tallied{
		Breakdown: make(map[string][]domain.CandidateStanding, len(positions)),
		Winners:   make(map[string]*domain.Winner, len(positions)),
	}

	for _, pos := range positions {
		var total int64
		for _, c := range byPosition[pos.ID] {
			total += counts[c.ID]
		}

		standings := make([]domain.CandidateStanding, 0, len(byPosition[pos.ID]))
		var winner *domain.Winner
		for _, c := range byPosition[pos.ID] {
			votes := counts[c.ID]
			var pct float64
			if total > 0 {
				pct = roundPercent(float64(votes) / float64(total) * 100)
			}
			standings = append(standings, domain.CandidateStanding{
				CandidateID: c.ID,
				Name:        c.Name,
				Votes:       votes,
				Percentage:  pct,
			})
			if votes > 0 && (winner == nil || votes > winner.Votes) {
				winner = &domain.Winner{CandidateID: c.ID, Name: c.Name, Votes: votes}
			}
		}

		t.Breakdown[pos.Name] = standings
		t.Winners[pos.Name] = winner
	}

	return t
}

func roundPercent(v float64) float64 {
	return math.Round(v*100) / 100
}

const (
	PeakHourly = "hourly"
	PeakDaily  = "daily"
)

// Participation is the time-bucketed voting histogram for one session.
type Participation struct {
	DurationHours  float64
	PeakType       string
	PeakVotingTime string
	PeakData       map[string]int64
}

// Bucketize groups ballots into participation buckets. Sessions lasting up to
// and including 24 hours bucket by hour of day ("0".."23"); longer sessions
// bucket by ISO date. Bucket times are taken in UTC. The peak is the bucket
// with the most ballots; ties go to the lowest bucket key (hours compared
// numerically, dates lexicographically).
func Bucketize(ballots []domain.Ballot, start, end time.Time) Participation {
	duration := end.Sub(start).Hours()

	peakType := PeakDaily
	if duration <= 24 {
		peakType = PeakHourly
	}

	data := make(map[string]int64)
	for _, b := range ballots {
		t := b.CastAt.UTC()
		var key string
		if peakType == PeakHourly {
			key = strconv.Itoa(t.Hour())
		} else {
			key = t.Format("2006-01-02")
		}
		data[key]++
	}

	return Participation{
		DurationHours:  duration,
		PeakType:       peakType,
		PeakVotingTime: peakBucket(data, peakType),
		PeakData:       data,
	}
}

func peakBucket(data map[string]int64, peakType string) string {
	if len(data) == 0 {
		return ""
	}

	if peakType == PeakHourly {
		peak, best := "", int64(0)
		for h := 0; h < 24; h++ {
			key := strconv.Itoa(h)
			if data[key] > best {
				peak, best = key, data[key]
			}
		}
		return peak
	}

	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	peak, best := "", int64(0)
	for _, k := range keys {
		if data[k] > best {
			peak, best = k, data[k]
		}
	}
	return peak
}
