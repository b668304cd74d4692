package service

import (
	"context"
	"time"

	"legal-rag-be/internal/pkg/logger"
	"legal-rag-be/internal/repository/unitofwork"

	"github.com/patrickmn/go-cache"
)

// DocumentLookup resolves the stable URL of a cited document. Results,
// including misses, are memoised.
type DocumentLookup struct {
	uowFactory unitofwork.RepositoryFactory
	cache      *cache.Cache
	logger     logger.ILogger
}

func NewDocumentLookup(uowFactory unitofwork.RepositoryFactory, ttl time.Duration, logger logger.ILogger) *DocumentLookup {
	return &DocumentLookup{
		uowFactory: uowFactory,
		cache:      cache.New(ttl, 2*ttl),
		logger:     logger,
	}
}

// PdfURL returns "" when the document is unknown or the lookup fails.
func (l *DocumentLookup) PdfURL(ctx context.Context, title, year string) string {
	key := title + "\x00" + year
	if x, found := l.cache.Get(key); found {
		return x.(string)
	}

	uow := l.uowFactory.NewUnitOfWork(ctx)
	doc, err := uow.LegalDocumentRepository().FindByTitleYear(ctx, title, year)
	if err != nil {
		// not cached, the next turn retries
		l.logger.Warn("DOCUMENTS", "Document lookup failed", map[string]interface{}{
			"title": title,
			"year":  year,
			"error": err.Error(),
		})
		return ""
	}

	url := ""
	if doc != nil {
		url = doc.PdfUrl
	}
	l.cache.Set(key, url, cache.DefaultExpiration)
	return url
}
