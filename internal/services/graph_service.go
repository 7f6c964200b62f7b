package services

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"graphv/internal/metrics"
	"graphv/internal/models"
	"graphv/internal/utils"

	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// ErrNodeNotFound means no node in the dataset has the requested id.
var ErrNodeNotFound = errors.New("node not found")

const insertBatchSize = 500

// prefixFilter selects edges whose src or dst starts with the anchor. The
// length argument is the anchor's character count; a zero length matches
// every edge.
const prefixFilter = "(substr(src, 1, ?) = ? OR substr(dst, 1, ?) = ?)"

// GraphOptions tunes dataset lifetime and caching.
type GraphOptions struct {
	MaxDatasets    int
	DatasetTTL     time.Duration
	QueryCacheSize int
	Mirror         GraphMirror
	Metrics        *metrics.Collector
}

type viewKey struct {
	hash  string
	query string
}

// GraphService ingests workbooks into the store and answers graph queries.
type GraphService struct {
	db      *gorm.DB
	log     *zap.Logger
	mirror  GraphMirror
	metrics *metrics.Collector

	// datasets maps content hash to dataset row id; eviction deletes the rows.
	datasets *utils.Cache[string, uint]
	views    *utils.Cache[viewKey, *GraphView]
	loads    singleflight.Group
}

// NewGraphService wires the store, caches and optional mirror.
func NewGraphService(db *gorm.DB, log *zap.Logger, opts GraphOptions) (*GraphService, error) {
	if opts.Metrics == nil {
		opts.Metrics = metrics.NewCollector("graphv")
	}
	s := &GraphService{
		db:      db,
		log:     log,
		mirror:  opts.Mirror,
		metrics: opts.Metrics,
	}

	var err error
	s.datasets, err = utils.NewCache[string, uint](opts.MaxDatasets, opts.DatasetTTL, s.evictDataset)
	if err != nil {
		return nil, fmt.Errorf("dataset cache: %w", err)
	}
	s.views, err = utils.NewCache[viewKey, *GraphView](opts.QueryCacheSize, opts.DatasetTTL, nil)
	if err != nil {
		return nil, fmt.Errorf("view cache: %w", err)
	}
	return s, nil
}

// Close drops every dataset and the mirror connection.
func (s *GraphService) Close(ctx context.Context) error {
	s.datasets.Purge()
	if s.mirror != nil {
		return s.mirror.Close(ctx)
	}
	return nil
}

// Hash identifies an upload by content.
func Hash(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Load parses and stores a workbook. Identical uploads reuse the stored
// dataset; concurrent identical uploads share one ingestion.
func (s *GraphService) Load(ctx context.Context, filename string, data []byte) (*models.Dataset, error) {
	hash := Hash(data)
	// other uploads may join this flight; one client going away must not fail them
	ctx = context.WithoutCancel(ctx)

	v, err, shared := s.loads.Do(hash, func() (any, error) {
		if ds, err := s.Dataset(ctx, hash); err == nil {
			s.datasets.Set(hash, ds.ID)
			s.metrics.Uploads.WithLabelValues("reused").Inc()
			return ds, nil
		}
		return s.ingest(ctx, hash, filename, data)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		s.log.Debug("upload shared an in-flight ingestion", zap.String("dataset", hash))
	}
	return v.(*models.Dataset), nil
}

func (s *GraphService) ingest(ctx context.Context, hash, filename string, data []byte) (*models.Dataset, error) {
	start := time.Now()

	wb, err := ReadWorkbook(bytes.NewReader(data))
	if err != nil {
		s.metrics.Uploads.WithLabelValues("rejected").Inc()
		return nil, err
	}
	nodes, edges, err := Normalize(wb)
	if err != nil {
		s.metrics.Uploads.WithLabelValues("rejected").Inc()
		return nil, err
	}

	ds := &models.Dataset{
		Hash:        hash,
		Filename:    filename,
		NodeCount:   len(nodes),
		EdgeCount:   len(edges),
		NodeColumns: renameColumns(wb.Nodes.Columns, nodeRenames),
		EdgeColumns: renameColumns(wb.Edges.Columns, edgeRenames),
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// leftovers of an expired copy of the same upload
		if err := deleteDatasetWhere(tx, "hash = ?", hash); err != nil {
			return err
		}
		if err := tx.Create(ds).Error; err != nil {
			return err
		}
		for i := range nodes {
			nodes[i].DatasetID = ds.ID
		}
		for i := range edges {
			edges[i].DatasetID = ds.ID
		}
		if len(nodes) > 0 {
			if err := tx.CreateInBatches(&nodes, insertBatchSize).Error; err != nil {
				return err
			}
		}
		if len(edges) > 0 {
			if err := tx.CreateInBatches(&edges, insertBatchSize).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.metrics.Uploads.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("store dataset: %w", err)
	}

	s.datasets.Set(hash, ds.ID)
	s.metrics.Datasets.Inc()
	s.metrics.Uploads.WithLabelValues("loaded").Inc()
	s.metrics.IngestDuration.Observe(time.Since(start).Seconds())
	s.log.Info("dataset loaded",
		zap.String("dataset", hash),
		zap.String("filename", filename),
		zap.Int("nodes", len(nodes)),
		zap.Int("edges", len(edges)),
	)

	if s.mirror != nil {
		if err := s.mirror.Mirror(ctx, ds, nodes, edges); err != nil {
			s.metrics.MirrorErrors.Inc()
			s.log.Warn("graph mirror failed", zap.String("dataset", hash), zap.Error(err))
		}
	}
	return ds, nil
}

// Dataset returns the live dataset for hash, or ErrDatasetNotFound.
func (s *GraphService) Dataset(ctx context.Context, hash string) (*models.Dataset, error) {
	id, ok := s.datasets.Get(hash)
	if !ok {
		return nil, ErrDatasetNotFound
	}
	var ds models.Dataset
	if err := s.db.WithContext(ctx).First(&ds, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDatasetNotFound
		}
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	return &ds, nil
}

// Forget drops a dataset immediately.
func (s *GraphService) Forget(hash string) {
	s.datasets.Delete(hash)
}

func (s *GraphService) evictDataset(hash string, id uint) {
	if err := deleteDatasetWhere(s.db, "id = ?", id); err != nil {
		s.log.Error("failed to delete evicted dataset", zap.String("dataset", hash), zap.Error(err))
		return
	}
	s.metrics.Datasets.Dec()
	s.log.Info("dataset evicted", zap.String("dataset", hash))

	if s.mirror != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.mirror.Forget(ctx, &models.Dataset{ID: id, Hash: hash}); err != nil {
			s.metrics.MirrorErrors.Inc()
			s.log.Warn("graph mirror cleanup failed", zap.String("dataset", hash), zap.Error(err))
		}
	}
}

func deleteDatasetWhere(db *gorm.DB, cond string, arg any) error {
	var ids []uint
	if err := db.Model(&models.Dataset{}).Where(cond, arg).Pluck("id", &ids).Error; err != nil {
		return fmt.Errorf("find datasets: %w", err)
	}
	if len(ids) == 0 {
		return nil
	}
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("dataset_id IN ?", ids).Delete(&models.Edge{}).Error; err != nil {
			return fmt.Errorf("delete edges: %w", err)
		}
		if err := tx.Where("dataset_id IN ?", ids).Delete(&models.Node{}).Error; err != nil {
			return fmt.Errorf("delete nodes: %w", err)
		}
		if err := tx.Where("id IN ?", ids).Delete(&models.Dataset{}).Error; err != nil {
			return fmt.Errorf("delete dataset: %w", err)
		}
		return nil
	})
}

// NodeNames lists node names in sheet order.
func (s *GraphService) NodeNames(ctx context.Context, ds *models.Dataset) ([]string, error) {
	var names []string
	err := s.db.WithContext(ctx).Model(&models.Node{}).
		Where("dataset_id = ?", ds.ID).
		Order("position").
		Pluck("name", &names).Error
	if err != nil {
		return nil, fmt.Errorf("list node names: %w", err)
	}
	return names, nil
}

// Query resolves input to an anchor and returns the induced subgraph.
// An empty input is no filter: every edge and every node named by one.
func (s *GraphService) Query(ctx context.Context, ds *models.Dataset, input string) (*GraphView, error) {
	kind := "fuzzy"
	if input == "" {
		kind = "all"
	}
	key := viewKey{hash: ds.Hash, query: input}
	if v, ok := s.views.Get(key); ok {
		s.metrics.Queries.WithLabelValues(kind, "hit").Inc()
		return v, nil
	}
	s.metrics.Queries.WithLabelValues(kind, "miss").Inc()

	var match *Match
	anchor := ""
	if input != "" {
		names, err := s.NodeNames(ctx, ds)
		if err != nil {
			return nil, err
		}
		if m, ok := ExtractOne(input, names); ok {
			match = &m
			anchor = m.Name
			s.metrics.MatchScore.Observe(float64(m.Score))
		} else {
			// no nodes to match against; filter on the raw text
			anchor = input
		}
	}

	edges, nodes, err := s.Subgraph(ctx, ds, anchor)
	if err != nil {
		return nil, err
	}

	v := BuildView(match, anchor, nodes, edges)
	v.EdgeColumns = ds.EdgeColumns
	if v.DroppedEdges > 0 {
		s.metrics.DroppedEdges.Add(float64(v.DroppedEdges))
		s.log.Debug("edges with unknown endpoints skipped",
			zap.String("dataset", ds.Hash),
			zap.String("anchor", anchor),
			zap.Int("dropped", v.DroppedEdges),
		)
	}
	s.views.Set(key, v)
	return v, nil
}

// Subgraph returns the edges with an endpoint starting with anchor and the
// nodes named by those edges, both in sheet order.
func (s *GraphService) Subgraph(ctx context.Context, ds *models.Dataset, anchor string) ([]models.Edge, []models.Node, error) {
	n := utf8.RuneCountInString(anchor)
	db := s.db.WithContext(ctx)

	var edges []models.Edge
	err := db.Where("dataset_id = ?", ds.ID).
		Where(prefixFilter, n, anchor, n, anchor).
		Order("position").
		Find(&edges).Error
	if err != nil {
		return nil, nil, fmt.Errorf("filter edges: %w", err)
	}

	endpoints := func(col string) *gorm.DB {
		return db.Model(&models.Edge{}).Select(col).
			Where("dataset_id = ?", ds.ID).
			Where(prefixFilter, n, anchor, n, anchor)
	}
	var nodes []models.Node
	err = db.Where("dataset_id = ?", ds.ID).
		Where("(name IN (?) OR name IN (?))", endpoints("src"), endpoints("dst")).
		Order("position").
		Find(&nodes).Error
	if err != nil {
		return nil, nil, fmt.Errorf("induced nodes: %w", err)
	}
	return edges, nodes, nil
}

// NodeDetail returns the attribute table of the first node with nodeID.
func (s *GraphService) NodeDetail(ctx context.Context, ds *models.Dataset, nodeID string) (*models.Node, []DetailRow, error) {
	var node models.Node
	err := s.db.WithContext(ctx).
		Where("dataset_id = ? AND node_id = ?", ds.ID, nodeID).
		Order("position").
		First(&node).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNodeNotFound
		}
		return nil, nil, fmt.Errorf("load node: %w", err)
	}
	return &node, DetailRows(node.Attributes), nil
}
