package seed

import (
	"context"
	"fmt"

	"legal-rag-be/internal/entity"
	"legal-rag-be/internal/pkg/logger"
	"legal-rag-be/internal/repository/unitofwork"
	"legal-rag-be/pkg/embedding"
	"legal-rag-be/pkg/utils"
)

const (
	module = "SEED"

	chunkSize    = 800
	chunkOverlap = 100
)

type Page struct {
	Number string
	Text   string
}

type Document struct {
	Title  string
	Year   string
	PdfUrl string
	Pages  []Page
}

// DemoCorpus is a tiny set of paraphrased provisions for local runs.
func DemoCorpus() []Document {
	return []Document{
		{
			Title:  "Criminal Procedure Act",
			Year:   "1998",
			PdfUrl: "https://legal-docs.example/criminal-procedure-act-1998.pdf",
			Pages: []Page{
				{Number: "12", Text: "Bail is the conditional release of an accused person from custody pending trial. " +
					"The court may require a surety or a cash deposit to secure the appearance of the accused at every hearing."},
				{Number: "13", Text: "Bail may be refused where there are substantial grounds for believing that the accused would fail to surrender, " +
					"commit an offence while on bail, or interfere with witnesses. Reasons for refusal must be recorded."},
				{Number: "27", Text: "A person arrested without a warrant must be brought before a magistrate within forty-eight hours, " +
					"excluding the time needed for the journey from the place of arrest to the court."},
			},
		},
		{
			Title:  "Residential Tenancies Act",
			Year:   "2004",
			PdfUrl: "https://legal-docs.example/residential-tenancies-act-2004.pdf",
			Pages: []Page{
				{Number: "5", Text: "A landlord may not require a security deposit exceeding one month's rent. " +
					"The deposit must be returned within twenty-eight days after the tenancy ends, less any amount lawfully withheld for damage beyond normal wear and tear."},
				{Number: "9", Text: "A landlord must give written notice of at least sixty days before terminating a periodic tenancy, " +
					"stating the ground for termination and the date on which the tenancy ends."},
			},
		},
		{
			Title:  "Consumer Protection Act",
			Year:   "2011",
			PdfUrl: "https://legal-docs.example/consumer-protection-act-2011.pdf",
			Pages: []Page{
				{Number: "3", Text: "Goods sold to a consumer must be of acceptable quality, fit for the purpose made known to the seller, " +
					"and match their description. A consumer may reject goods that fail these guarantees within a reasonable time."},
			},
		},
	}
}

// Seed embeds and stores docs. Documents already present (same title and
// year) are skipped, so seeding twice is harmless.
func Seed(ctx context.Context, uowFactory unitofwork.RepositoryFactory, emb embedding.EmbeddingProvider, docs []Document, log logger.ILogger) (int, error) {
	stored := 0
	for _, d := range docs {
		uow := uowFactory.NewUnitOfWork(ctx)

		existing, err := uow.LegalDocumentRepository().FindByTitleYear(ctx, d.Title, d.Year)
		if err != nil {
			return stored, fmt.Errorf("find %s (%s): %w", d.Title, d.Year, err)
		}
		if existing != nil {
			log.Info(module, "Document already seeded", map[string]interface{}{"title": d.Title, "year": d.Year})
			continue
		}

		// embed before opening the transaction, the calls are slow
		var chunks []*entity.LegalChunk
		for _, p := range d.Pages {
			for _, text := range utils.SplitText(p.Text, chunkSize, chunkOverlap) {
				res, err := emb.Generate(ctx, text, embedding.TaskRetrievalDocument)
				if err != nil {
					return stored, fmt.Errorf("embed %s page %s: %w", d.Title, p.Number, err)
				}
				chunks = append(chunks, &entity.LegalChunk{
					PageNumber: p.Number,
					Text:       text,
					Embedding:  res.Vector(),
				})
			}
		}

		if err := uow.Begin(ctx); err != nil {
			return stored, err
		}
		doc := &entity.LegalDocument{Title: d.Title, Year: d.Year, PdfUrl: d.PdfUrl}
		if err := uow.LegalDocumentRepository().Create(ctx, doc); err != nil {
			_ = uow.Rollback()
			return stored, fmt.Errorf("create %s (%s): %w", d.Title, d.Year, err)
		}
		for _, c := range chunks {
			c.DocumentId = doc.Id
		}
		if err := uow.LegalChunkRepository().CreateBulk(ctx, chunks); err != nil {
			_ = uow.Rollback()
			return stored, fmt.Errorf("store chunks of %s: %w", d.Title, err)
		}
		if err := uow.Commit(); err != nil {
			return stored, err
		}

		stored++
		log.Info(module, "Document seeded", map[string]interface{}{
			"title":  d.Title,
			"year":   d.Year,
			"chunks": len(chunks),
		})
	}
	return stored, nil
}
