package services

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"github.com/sirupsen/logrus"

	"github.com/Jgaps7/curriculos-saas/internal/apperr"
	"github.com/Jgaps7/curriculos-saas/internal/config"
	"github.com/Jgaps7/curriculos-saas/internal/models"
)

// ResumeIndex is the similarity index over evaluated résumés. Every point
// carries its tenant id and every search filters on it.
type ResumeIndex interface {
	EnsureCollection(ctx context.Context) error
	IndexResume(ctx context.Context, resume *models.Resume) error
	Search(ctx context.Context, tenantID, query, jobID string, limit int) ([]models.SearchHit, error)
	DeleteResume(ctx context.Context, tenantID, resumeID string) error
}

type qdrantIndex struct {
	client         *qdrant.Client
	collectionName string
	vectorSize     uint64
	embedder       Embedder
	chunker        TextChunker
	log            *logrus.Logger
}

func NewQdrantIndex(cfg config.QdrantConfig, embedder Embedder, log *logrus.Logger) (ResumeIndex, error) {
	parsed, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	// gRPC port by default.
	port := 6334
	if p := parsed.Port(); p != "" {
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   parsed.Hostname(),
		Port:   port,
		APIKey: cfg.APIKey,
		UseTLS: parsed.Scheme == "https",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &qdrantIndex{
		client:         client,
		collectionName: cfg.Collection,
		vectorSize:     cfg.VectorSize,
		embedder:       embedder,
		chunker:        NewTextChunker(1000, 150),
		log:            log,
	}, nil
}

func (q *qdrantIndex) EnsureCollection(ctx context.Context) error {
	exists, err := q.client.CollectionExists(ctx, q.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}
	if exists {
		return nil
	}

	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     q.vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	for _, field := range []string{"tenant_id", "job_id", "resume_id"} {
		_, err := q.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
			CollectionName: q.collectionName,
			FieldName:      field,
			FieldType:      qdrant.FieldType_FieldTypeKeyword.Enum(),
		})
		if err != nil {
			return fmt.Errorf("failed to index payload field %s: %w", field, err)
		}
	}

	q.log.WithField("collection", q.collectionName).Info("✅ Qdrant collection created")
	return nil
}

// IndexResume replaces the résumé's points with fresh chunks of its raw text.
// Point ids derive from the résumé id, so re-indexing overwrites.
func (q *qdrantIndex) IndexResume(ctx context.Context, resume *models.Resume) error {
	if err := q.DeleteResume(ctx, resume.TenantID, resume.ID); err != nil {
		return err
	}

	chunks := q.chunker.Chunk(resume.RawText)
	if len(chunks) == 0 {
		return nil
	}

	points := make([]*qdrant.PointStruct, 0, len(chunks))
	for i, chunk := range chunks {
		embedding, err := q.embedder.Embed(ctx, chunk)
		if err != nil {
			return fmt.Errorf("failed to embed chunk %d: %w", i, err)
		}

		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewIDUUID(pointID(resume.ID, i)),
			Vectors: qdrant.NewVectors(embedding...),
			Payload: qdrant.NewValueMap(map[string]any{
				"tenant_id":   resume.TenantID,
				"job_id":      resume.JobID,
				"resume_id":   resume.ID,
				"chunk_index": int64(i),
				"chunk":       chunk,
			}),
		})
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collectionName,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert points: %w", err)
	}
	return nil
}

func (q *qdrantIndex) Search(ctx context.Context, tenantID, query, jobID string, limit int) ([]models.SearchHit, error) {
	if tenantID == "" {
		return nil, apperr.ErrTenantScopeRequired
	}
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	embedding, err := q.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	filter := tenantFilter(tenantID)
	if jobID != "" {
		filter.Must = append(filter.Must, qdrant.NewMatch("job_id", jobID))
	}

	points, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collectionName,
		Query:          qdrant.NewQuery(embedding...),
		Filter:         filter,
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, apperr.E(apperr.KindUnavailable, "qdrant.Search", "similarity search failed", err)
	}

	hits := make([]models.SearchHit, 0, len(points))
	for _, point := range points {
		hits = append(hits, models.SearchHit{
			ResumeID: payloadString(point.Payload, "resume_id"),
			JobID:    payloadString(point.Payload, "job_id"),
			Score:    point.Score,
			Chunk:    payloadString(point.Payload, "chunk"),
		})
	}
	return hits, nil
}

func (q *qdrantIndex) DeleteResume(ctx context.Context, tenantID, resumeID string) error {
	filter := tenantFilter(tenantID)
	filter.Must = append(filter.Must, qdrant.NewMatch("resume_id", resumeID))

	_, err := q.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: q.collectionName,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Filter{
				Filter: filter,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete points: %w", err)
	}
	return nil
}

func tenantFilter(tenantID string) *qdrant.Filter {
	return &qdrant.Filter{
		Must: []*qdrant.Condition{
			qdrant.NewMatch("tenant_id", tenantID),
		},
	}
}

func pointID(resumeID string, chunk int) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(resumeID+":"+strconv.Itoa(chunk))).String()
}

func payloadString(payload map[string]*qdrant.Value, key string) string {
	if v, ok := payload[key]; ok {
		if s, ok := v.GetKind().(*qdrant.Value_StringValue); ok {
			return s.StringValue
		}
	}
	return ""
}
