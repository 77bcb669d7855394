package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/manikantaaddala217-hub/fin-backend/shared/apperr"
	"github.com/manikantaaddala217-hub/fin-backend/shared/models"
	sharedredis "github.com/manikantaaddala217-hub/fin-backend/shared/redis"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const (
	summaryKeyPrefix  = "loan:summary:"
	summaryGenKey     = "loan:summary:gen"
	defaultSummaryTTL = 10 * time.Minute
)

// LoanFilter narrows a loan listing. Zero fields do not filter; a non-nil
// Areas restricts to those areas (an empty slice matches nothing). GivenFrom
// and GivenTo bound givenDate inclusively.
type LoanFilter struct {
	Section   string
	Areas     []string
	Day       string
	GivenFrom string
	GivenTo   string
}

// LoanReadRepository serves listings, ledgers, report rows and the cached
// section summary.
type LoanReadRepository struct {
	db      *gorm.DB
	redis   goredis.UniversalClient
	summary *sharedredis.ViewCache[models.LoanSummary]
}

// NewLoanReadRepository caches summaries for summaryTTL (10 minutes when zero).
func NewLoanReadRepository(db *gorm.DB, redisClient goredis.UniversalClient, summaryTTL time.Duration) *LoanReadRepository {
	if summaryTTL <= 0 {
		summaryTTL = defaultSummaryTTL
	}
	return &LoanReadRepository{
		db:      db,
		redis:   redisClient,
		summary: sharedredis.NewViewCache[models.LoanSummary](redisClient, summaryTTL),
	}
}

func (r *LoanReadRepository) GetByID(ctx context.Context, loanID string) (*models.LoanAccount, error) {
	var loan models.LoanAccount
	err := r.db.WithContext(ctx).First(&loan, "loan_id = ?", loanID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Loan not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get loan: %w", err)
	}
	return &loan, nil
}

// Find returns the loans matching f ordered by section then sno.
func (r *LoanReadRepository) Find(ctx context.Context, f LoanFilter) ([]models.LoanAccount, error) {
	loans := []models.LoanAccount{}
	if f.Areas != nil && len(f.Areas) == 0 {
		return loans, nil
	}
	q := r.db.WithContext(ctx).Model(&models.LoanAccount{})
	if f.Section != "" {
		q = q.Where("section = ?", f.Section)
	}
	if len(f.Areas) > 0 {
		q = q.Where("area IN ?", f.Areas)
	}
	if f.Day != "" {
		q = q.Where("day = ?", f.Day)
	}
	if f.GivenFrom != "" {
		q = q.Where("given_date >= ?", f.GivenFrom)
	}
	if f.GivenTo != "" {
		q = q.Where("given_date <= ?", f.GivenTo)
	}
	if err := q.Order("section ASC").Order("sno ASC").Find(&loans).Error; err != nil {
		return nil, fmt.Errorf("failed to list loans: %w", err)
	}
	return loans, nil
}

// Entries returns the ledger of a loan ascending by date.
func (r *LoanReadRepository) Entries(ctx context.Context, loanID string) ([]models.LedgerEntry, error) {
	entries := []models.LedgerEntry{}
	if err := r.db.WithContext(ctx).
		Where("loan_id = ?", loanID).
		Order("date ASC").
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}
	return entries, nil
}

// EntriesBetween returns the entries of the given loans dated within
// [from, to], ordered by date.
func (r *LoanReadRepository) EntriesBetween(ctx context.Context, loanIDs []string, from, to string) ([]models.LedgerEntry, error) {
	entries := []models.LedgerEntry{}
	if len(loanIDs) == 0 {
		return entries, nil
	}
	if err := r.db.WithContext(ctx).
		Where("loan_id IN ?", loanIDs).
		Where("date BETWEEN ? AND ?", from, to).
		Order("date ASC").Order("id ASC").
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}
	return entries, nil
}

type sectionTotals struct {
	Section string
	Loans   int64
	Total   int64
	Paid    int64
}

// Summary aggregates tamount and paid per section. An empty section covers
// every section; a non-nil areas only counts loans in those areas (an empty
// slice counts nothing). Results are cached until InvalidateSummary or the TTL.
func (r *LoanReadRepository) Summary(ctx context.Context, section string, areas []string) (*models.LoanSummary, error) {
	if areas != nil && len(areas) == 0 {
		return buildSummary(section, nil), nil
	}

	gen, cacheable := r.summaryGeneration(ctx)
	key := summaryKey(gen, section, areas)
	if cacheable {
		if s, ok := r.summary.Get(ctx, key); ok {
			return s, nil
		}
	}

	q := r.db.WithContext(ctx).Model(&models.LoanAccount{}).
		Select("section, COUNT(*) AS loans, COALESCE(SUM(tamount), 0) AS total, COALESCE(SUM(paid), 0) AS paid").
		Group("section")
	if section != "" {
		q = q.Where("section = ?", section)
	}
	if len(areas) > 0 {
		q = q.Where("area IN ?", areas)
	}
	var rows []sectionTotals
	if err := q.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to summarize loans: %w", err)
	}

	summary := buildSummary(section, rows)
	if cacheable {
		r.summary.Set(ctx, key, summary)
	}
	return summary, nil
}

// InvalidateSummary retires every cached summary by moving to the next
// generation. Entries of older generations are never read again and expire
// with the TTL.
func (r *LoanReadRepository) InvalidateSummary(ctx context.Context) {
	if err := r.redis.Incr(ctx, summaryGenKey).Err(); err != nil {
		log.Warn().Err(err).Msg("loan summary invalidation failed")
	}
}

// summaryGeneration reads the current generation. It is read before the
// aggregate query, so a summary computed before a concurrent write is stored
// under a generation that write has already retired. The second result is
// false when Redis is unreachable and the cache must be bypassed.
func (r *LoanReadRepository) summaryGeneration(ctx context.Context) (int64, bool) {
	gen, err := r.redis.Get(ctx, summaryGenKey).Int64()
	if errors.Is(err, goredis.Nil) {
		return 0, true
	}
	if err != nil {
		log.Warn().Err(err).Msg("loan summary generation read failed")
		return 0, false
	}
	return gen, true
}

// buildSummary lists the requested sections in display order, zero-filled,
// followed by the total row over the same set.
func buildSummary(section string, rows []sectionTotals) *models.LoanSummary {
	bySection := make(map[string]sectionTotals, len(rows))
	for _, row := range rows {
		bySection[row.Section] = row
	}
	sections := models.Sections
	if section != "" {
		sections = []string{section}
	}

	out := &models.LoanSummary{
		Sections: make([]models.SectionSummary, 0, len(sections)),
		Total:    models.SectionSummary{Section: "Total"},
	}
	for _, s := range sections {
		row := bySection[s]
		out.Sections = append(out.Sections, models.SectionSummary{
			Section:       s,
			Loans:         row.Loans,
			TotalAmount:   row.Total,
			PaidAmount:    row.Paid,
			BalanceAmount: row.Total - row.Paid,
		})
		out.Total.Loans += row.Loans
		out.Total.TotalAmount += row.Total
		out.Total.PaidAmount += row.Paid
	}
	out.Total.BalanceAmount = out.Total.TotalAmount - out.Total.PaidAmount
	return out
}

// summaryKey is loan:summary:<gen>:<section|all>:<areas|*>, with the areas
// sorted so the same scope always maps to one key.
func summaryKey(gen int64, section string, areas []string) string {
	if section == "" {
		section = "all"
	}
	scope := "*"
	if areas != nil {
		sorted := append([]string(nil), areas...)
		sort.Strings(sorted)
		scope = strings.Join(sorted, ",")
	}
	return fmt.Sprintf("%s%d:%s:%s", summaryKeyPrefix, gen, section, scope)
}
