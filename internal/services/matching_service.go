package services

import (
	"context"
	"net/mail"
	"strings"

	"github.com/justsurfingit/applicant-tracker/internal/database"
	"github.com/justsurfingit/applicant-tracker/internal/models"
)

// MatcherService links a new application to earlier ones from the same
// candidate.
type MatcherService struct {
	Store database.ApplicationStore
}

func NewMatcherService(store database.ApplicationStore) *MatcherService {
	return &MatcherService{Store: store}
}

// NormalizeEmail reduces "Ada Lovelace <Ada@Example.com>" or " ada@example.com "
// to "ada@example.com". Anything that does not parse is returned lower-cased
// and trimmed.
func NormalizeEmail(raw string) string {
	raw = strings.TrimSpace(raw)
	if addr, err := mail.ParseAddress(raw); err == nil {
		return strings.ToLower(addr.Address)
	}
	return strings.ToLower(raw)
}

// FindDuplicates returns earlier applications by the same email. When jobID
// is set only applications to that job count.
func (s *MatcherService) FindDuplicates(ctx context.Context, email string, jobID *uint) ([]models.Application, error) {
	email = NormalizeEmail(email)
	// too short to be an address; everything would match
	if len(email) < 3 || !strings.Contains(email, "@") {
		return nil, nil
	}
	apps, err := s.Store.FindApplicationsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if jobID == nil {
		return apps, nil
	}
	out := apps[:0]
	for _, a := range apps {
		if a.JobID != nil && *a.JobID == *jobID {
			out = append(out, a)
		}
	}
	return out, nil
}
