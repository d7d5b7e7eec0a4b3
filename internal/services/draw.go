package services

import (
	"math/rand"
	"sync"
	"time"

	"github.com/cmsgraham/secret-santa/internal/models"
)

// maxDrawAttempts bounds the shuffle-until-valid loop. For two participants
// an attempt succeeds half the time on average, and the success rate only
// improves with more people, so 100 attempts is effectively never exhausted.
const maxDrawAttempts = 100

// DrawService produces giver→receiver assignments by rejection sampling:
// shuffle the receiver list until no giver is paired with themselves.
// No uniformity among valid derangements is promised, only that some valid
// one is found.
type DrawService struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewDrawService() *DrawService {
	return &DrawService{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// NewDrawServiceWithSource injects a deterministic source for tests.
func NewDrawServiceWithSource(src rand.Source) *DrawService {
	return &DrawService{rng: rand.New(src)}
}

// AssignReceivers maps each participant (in input order) to a receiver. The
// result is a permutation of the input; with allowSelf false it is a
// derangement. Pure apart from the random source: persisting the rows is the
// caller's job.
func (s *DrawService) AssignReceivers(participants []models.Participant, allowSelf bool) ([]models.Assignment, error) {
	if len(participants) < 2 {
		return nil, ErrInsufficientParticipants
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	receivers := make([]models.Participant, len(participants))
	copy(receivers, participants)

	for attempt := 0; attempt < maxDrawAttempts; attempt++ {
		s.rng.Shuffle(len(receivers), func(i, j int) {
			receivers[i], receivers[j] = receivers[j], receivers[i]
		})

		valid := true
		for i := range participants {
			if !allowSelf && participants[i].ID == receivers[i].ID {
				valid = false
				break
			}
		}
		if !valid {
			continue
		}

		assignments := make([]models.Assignment, len(participants))
		for i := range participants {
			assignments[i] = models.Assignment{
				GiverID:    participants[i].ID,
				ReceiverID: receivers[i].ID,
			}
		}
		return assignments, nil
	}

	return nil, ErrAssignmentUnsatisfiable
}
