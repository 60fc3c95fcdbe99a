package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"finance-tracker-backend/internal/analytics"
	"finance-tracker-backend/internal/records"
	"finance-tracker-backend/internal/report"
	"finance-tracker-backend/internal/store"
)

// recordStore is the record access the handlers need: the RecordStore
// operations plus reads that tell where the data came from.
type recordStore interface {
	store.RecordStore
	ReadExpenses(ctx context.Context, owner string) ([]records.Expense, store.Source, error)
	ReadIncomes(ctx context.Context, owner string) ([]records.Income, store.Source, error)
	ReadShares(ctx context.Context, owner string) ([]records.ShareTransaction, store.Source, error)
	ReadSnapshot(ctx context.Context, owner string) (store.Snapshot, store.Source, error)
}

// catalogStore holds the data shared by all owners.
type catalogStore interface {
	Ping(ctx context.Context) error
	Categories(ctx context.Context) ([]store.Category, error)
	Quotes(ctx context.Context) (map[string]float64, error)
	SetQuote(ctx context.Context, symbol string, price float64) error
}

type server struct {
	records  recordStore
	catalog  catalogStore
	cache    *cache
	metrics  *metrics
	currency string
	now      func() time.Time
}

// healthCheck handles the health check endpoint
func (s *server) healthCheck(c *gin.Context) {
	if err := s.catalog.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "finance-tracker",
	})
}

// fail maps err onto a status code and error body
func (s *server) fail(c *gin.Context, err error) {
	var many *records.ValidationErrors
	var one *records.ValidationError
	switch {
	case errors.As(err, &many):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "errors": many.Messages()})
	case errors.As(err, &one):
		c.JSON(http.StatusBadRequest, gin.H{"error": one.Error(), "errors": []string{one.Error()}})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrOwnerRequired),
		errors.Is(err, store.ErrOwnerTooLong),
		store.IsRejected(err),
		errors.Is(err, report.ErrUnknownKind),
		errors.Is(err, report.ErrUnknownPeriod):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func owner(c *gin.Context) string {
	return c.GetString(ownerKey)
}

func markSource(c *gin.Context, source store.Source) {
	if source == store.SourceLocal {
		c.Header(dataSourceHeader, string(store.SourceLocal))
	}
}

// listRecords serves one record kind, cached per owner while the database answers
func listRecords[T any](s *server, c *gin.Context, kind string,
	read func(ctx context.Context, owner string) ([]T, store.Source, error)) {
	ctx := c.Request.Context()
	key := recordsKey(owner(c), kind)

	var cached []T
	if s.cache.get(ctx, key, &cached) {
		c.JSON(http.StatusOK, cached)
		return
	}

	items, source, err := read(ctx, owner(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	if items == nil {
		items = make([]T, 0)
	}
	markSource(c, source)
	if source == store.SourceRemote {
		s.cache.setRecords(ctx, key, items)
	}
	c.JSON(http.StatusOK, items)
}

func (s *server) getExpenses(c *gin.Context) {
	listRecords(s, c, "expenses", s.records.ReadExpenses)
}

func (s *server) getIncomes(c *gin.Context) {
	listRecords(s, c, "income", s.records.ReadIncomes)
}

func (s *server) getShares(c *gin.Context) {
	listRecords(s, c, "shares", s.records.ReadShares)
}

// addExpense creates a new expense
func (s *server) addExpense(c *gin.Context) {
	var req ExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	e := req.toRecord(uuid.NewString())
	if err := e.Validate(); err != nil {
		s.fail(c, err)
		return
	}
	if err := s.records.AddExpense(c.Request.Context(), owner(c), e); err != nil {
		s.fail(c, err)
		return
	}
	s.cache.invalidateOwner(c.Request.Context(), owner(c))
	c.JSON(http.StatusCreated, e)
}

// addIncome creates a new income record
func (s *server) addIncome(c *gin.Context) {
	var req IncomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	i := req.toRecord(uuid.NewString())
	if err := i.Validate(); err != nil {
		s.fail(c, err)
		return
	}
	if err := s.records.AddIncome(c.Request.Context(), owner(c), i); err != nil {
		s.fail(c, err)
		return
	}
	s.cache.invalidateOwner(c.Request.Context(), owner(c))
	c.JSON(http.StatusCreated, i)
}

// addShare records a buy or sell
func (s *server) addShare(c *gin.Context) {
	var req ShareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	tx := req.toRecord(uuid.NewString())
	if err := tx.Validate(); err != nil {
		s.fail(c, err)
		return
	}
	if err := s.records.AddShare(c.Request.Context(), owner(c), tx); err != nil {
		s.fail(c, err)
		return
	}
	s.cache.invalidateOwner(c.Request.Context(), owner(c))
	c.JSON(http.StatusCreated, tx)
}

func (s *server) deleteRecord(c *gin.Context, del func(ctx context.Context, owner, id string) error, message string) {
	if err := del(c.Request.Context(), owner(c), c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	s.cache.invalidateOwner(c.Request.Context(), owner(c))
	c.JSON(http.StatusOK, gin.H{"message": message})
}

func (s *server) deleteExpense(c *gin.Context) {
	s.deleteRecord(c, s.records.DeleteExpense, "Expense deleted")
}

func (s *server) deleteIncome(c *gin.Context) {
	s.deleteRecord(c, s.records.DeleteIncome, "Income deleted")
}

func (s *server) deleteShare(c *gin.Context) {
	s.deleteRecord(c, s.records.DeleteShare, "Share transaction deleted")
}

// getCategories retrieves all categories
func (s *server) getCategories(c *gin.Context) {
	categories, err := s.catalog.Categories(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

// setQuote stores a manual current price for a symbol
func (s *server) setQuote(c *gin.Context) {
	symbol := normalizeSymbol(c.Param("symbol"))
	if err := records.ValidateSymbol(symbol); err != nil {
		s.fail(c, err)
		return
	}
	var req QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := records.ValidatePrice(*req.Price); err != nil {
		s.fail(c, err)
		return
	}
	if err := s.catalog.SetQuote(c.Request.Context(), symbol, *req.Price); err != nil {
		s.fail(c, err)
		return
	}
	s.cache.invalidateAnalytics(c.Request.Context(), "portfolio")
	c.JSON(http.StatusOK, Quote{Symbol: symbol, Price: *req.Price})
}

// prices values holdings at the manual quote, else at the last trade price
func (s *server) prices(ctx context.Context, shares []records.ShareTransaction) analytics.PriceSource {
	quotes, err := s.catalog.Quotes(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("quotes unavailable, using last trade prices")
		quotes = nil
	}
	return analytics.FallbackPrices{
		Primary:   analytics.StaticPrices(quotes),
		Secondary: analytics.LastTradePrices(shares),
	}
}

// serveAnalytics computes an analytics result over the owner's records, cached
// while the database answers
func (s *server) serveAnalytics(c *gin.Context, kind string, compute func(ctx context.Context, snap store.Snapshot) any) {
	ctx := c.Request.Context()
	key := analyticsKey(owner(c), kind)

	var cached json.RawMessage
	if s.cache.get(ctx, key, &cached) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", cached)
		return
	}

	snap, source, err := s.records.ReadSnapshot(ctx, owner(c))
	if err != nil {
		s.fail(c, err)
		return
	}

	done := s.metrics.timeAnalytics(kind)
	result := compute(ctx, snap)
	done()

	markSource(c, source)
	if source == store.SourceRemote {
		s.cache.setAnalytics(ctx, key, result)
	}
	c.JSON(http.StatusOK, result)
}

func (s *server) getSummary(c *gin.Context) {
	s.serveAnalytics(c, "summary", func(_ context.Context, snap store.Snapshot) any {
		return SummaryResponse{
			Summary:             analytics.Summarize(snap.Expenses, snap.Incomes, snap.Shares),
			ExpensesByCategory:  analytics.ExpensesByCategory(snap.Expenses),
			ExpensesByRecipient: analytics.ExpensesByRecipient(snap.Expenses),
			IncomeBySource:      analytics.IncomeBySource(snap.Incomes),
			Monthly:             analytics.Monthly(snap.Expenses, snap.Incomes),
		}
	})
}

func (s *server) getMACD(c *gin.Context) {
	s.serveAnalytics(c, "macd", func(_ context.Context, snap store.Snapshot) any {
		return analytics.MACD(snap.Expenses, snap.Incomes)
	})
}

func (s *server) getPortfolio(c *gin.Context) {
	s.serveAnalytics(c, "portfolio", func(ctx context.Context, snap store.Snapshot) any {
		return analytics.Analyze(snap.Shares, s.prices(ctx, snap.Shares))
	})
}

const maxHistoryDays = 365

// getPriceHistory serves the illustrative price series; the same owner gets
// the same series for the whole day
func (s *server) getPriceHistory(c *gin.Context) {
	days, err := strconv.Atoi(c.DefaultQuery("days", "30"))
	if err != nil || days < 1 || days > maxHistoryDays {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("days must be between 1 and %d", maxHistoryDays)})
		return
	}

	ctx := c.Request.Context()
	snap, source, err := s.records.ReadSnapshot(ctx, owner(c))
	if err != nil {
		s.fail(c, err)
		return
	}

	now := s.now()
	done := s.metrics.timeAnalytics("price-history")
	rnd := rand.New(rand.NewSource(historySeed(owner(c), now)))
	history := analytics.PriceHistory(analytics.Symbols(snap.Shares), s.prices(ctx, snap.Shares), now, days, rnd)
	done()

	markSource(c, source)
	c.JSON(http.StatusOK, history)
}

func historySeed(owner string, now time.Time) int64 {
	h := fnv.New64a()
	h.Write([]byte(owner))
	h.Write([]byte(records.FormatDate(now)))
	return int64(h.Sum64())
}

// getReport builds a report document as JSON or a markdown download
func (s *server) getReport(c *gin.Context) {
	kind, err := report.ParseKind(c.Param("kind"))
	if err != nil {
		s.fail(c, err)
		return
	}
	period, err := report.ParsePeriod(c.Query("period"))
	if err != nil {
		s.fail(c, err)
		return
	}
	format := c.DefaultQuery("format", "json")
	if format != "json" && format != "markdown" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be 'json' or 'markdown'"})
		return
	}

	ctx := c.Request.Context()
	snap, source, err := s.records.ReadSnapshot(ctx, owner(c))
	if err != nil {
		s.fail(c, err)
		return
	}

	now := s.now()
	done := s.metrics.timeAnalytics("report_" + string(kind))
	doc, err := report.Build(kind, report.Input{
		Expenses: snap.Expenses,
		Incomes:  snap.Incomes,
		Shares:   snap.Shares,
		Prices:   s.prices(ctx, snap.Shares),
		Period:   period,
	}, now)
	done()
	if err != nil {
		s.fail(c, err)
		return
	}

	markSource(c, source)
	if format == "markdown" {
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, report.Filename(kind, period, now, "md")))
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(report.Markdown(doc, s.currency)))
		return
	}
	c.JSON(http.StatusOK, doc)
}
