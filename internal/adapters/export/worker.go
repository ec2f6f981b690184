// Package export renders computed value tables into stored artifacts
// asynchronously. Jobs move through queued, running and a terminal
// succeeded or failed status; every transition is recorded in the audit log.
package export

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"traitcore/internal/blob"
	"traitcore/pkg/valuetable"
)

// Status describes the lifecycle stage of an export job.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Query selects which value table an export job materializes.
type Query string

const (
	QueryEdgeEffects   Query = "edge_effects"
	QueryGeneticValues Query = "genetic_values"
)

// Format identifies a rendered artifact encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// Artifact captures one stored rendition of a value table.
type Artifact struct {
	ID          string    `json:"id"`
	Format      Format    `json:"format"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	ETag        string    `json:"etag,omitempty"`
	URL         string    `json:"url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Record tracks an export job and its resulting artifacts. Level is set only
// for genetic value queries; edge effect tables have edge granularity.
type Record struct {
	ID             string           `json:"id"`
	TreeSequenceID string           `json:"tree_sequence_id"`
	TraitTableID   string           `json:"trait_table_id"`
	Query          Query            `json:"query"`
	Level          valuetable.Level `json:"level,omitempty"`
	Formats        []Format         `json:"formats"`
	Status         Status           `json:"status"`
	Error          string           `json:"error,omitempty"`
	Artifacts      []Artifact       `json:"artifacts,omitempty"`
	RequestedBy    string           `json:"requested_by"`
	Reason         string           `json:"reason,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
	CompletedAt    *time.Time       `json:"completed_at,omitempty"`
}

// Input describes an enqueue request. An empty Query defaults to genetic
// values, an empty Level to the individual aggregation, and empty Formats
// to JSON plus CSV.
type Input struct {
	TreeSequenceID string
	TraitTableID   string
	Query          Query
	Level          valuetable.Level
	Formats        []Format
	RequestedBy    string
	Reason         string
}

// TableSource runs value table computations against stored records.
// *core.Service satisfies it.
type TableSource interface {
	EdgeEffects(ctx context.Context, treeSequenceID, traitTableID string) (*valuetable.Table, error)
	GeneticValues(ctx context.Context, treeSequenceID, traitTableID string, level valuetable.Level) (*valuetable.Table, error)
}

// Worker executes export jobs on a single background goroutine.
type Worker struct {
	source TableSource
	store  blob.Store
	audit  AuditLog

	queue chan exportTask
	mu    sync.RWMutex
	jobs  map[string]*Record

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type exportTask struct {
	id string
}

const queueCapacity = 32

// NewWorker constructs an export worker. The blob store may be nil, in which
// case rendered artifacts are described on the record but not persisted.
func NewWorker(source TableSource, store blob.Store, audit AuditLog) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{
		source: source,
		store:  store,
		audit:  audit,
		queue:  make(chan exportTask, queueCapacity),
		jobs:   make(map[string]*Record),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start begins processing queued jobs.
func (w *Worker) Start() {
	w.wg.Add(1)
	go w.loop()
}

// Stop halts the worker and waits for the in-flight job, honoring ctx.
func (w *Worker) Stop(ctx context.Context) error {
	w.cancel()
	idle := make(chan struct{})
	go func() {
		defer close(idle)
		w.wg.Wait()
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-idle:
		return nil
	}
}

func (w *Worker) loop() {
	defer w.wg.Done()
	for {
		select {
		case task := <-w.queue:
			w.process(task)
		case <-w.ctx.Done():
			return
		}
	}
}

// Enqueue validates the request, registers a queued job and schedules it.
func (w *Worker) Enqueue(ctx context.Context, input Input) (Record, error) {
	if w.source == nil {
		return Record{}, fmt.Errorf("table source not configured")
	}
	if input.TreeSequenceID == "" || input.TraitTableID == "" {
		return Record{}, fmt.Errorf("tree sequence and trait table ids required")
	}

	query := input.Query
	var level valuetable.Level
	switch query {
	case "":
		query = QueryGeneticValues
	case QueryEdgeEffects, QueryGeneticValues:
	default:
		return Record{}, fmt.Errorf("unknown query %q", input.Query)
	}
	if query == QueryGeneticValues {
		parsed, err := valuetable.ParseLevel(string(input.Level))
		if err != nil {
			return Record{}, err
		}
		level = parsed
	}

	formats := input.Formats
	if len(formats) == 0 {
		formats = []Format{FormatJSON, FormatCSV}
	}
	uniq := make([]Format, 0, len(formats))
	seen := make(map[Format]struct{}, len(formats))
	for _, format := range formats {
		if _, dup := seen[format]; dup {
			continue
		}
		switch format {
		case FormatJSON, FormatCSV:
		default:
			return Record{}, fmt.Errorf("unsupported export format %s", format)
		}
		uniq = append(uniq, format)
		seen[format] = struct{}{}
	}

	id := newID()
	now := time.Now().UTC()
	record := Record{
		ID:             id,
		TreeSequenceID: input.TreeSequenceID,
		TraitTableID:   input.TraitTableID,
		Query:          query,
		Level:          level,
		Formats:        uniq,
		Status:         StatusQueued,
		RequestedBy:    input.RequestedBy,
		Reason:         input.Reason,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	w.mu.Lock()
	w.jobs[id] = &record
	snapshot := record.copy()
	w.mu.Unlock()

	if w.audit != nil {
		w.audit.Record(ctx, AuditEntry{
			ID:             newID(),
			Action:         auditAction,
			Actor:          input.RequestedBy,
			TreeSequenceID: input.TreeSequenceID,
			TraitTableID:   input.TraitTableID,
			Status:         StatusQueued,
			Reason:         input.Reason,
			OccurredAt:     now,
		})
	}

	select {
	case w.queue <- exportTask{id: id}:
	default:
		w.mu.Lock()
		delete(w.jobs, id)
		w.mu.Unlock()
		if w.audit != nil {
			w.audit.Record(ctx, AuditEntry{
				ID:             newID(),
				Action:         auditAction,
				Actor:          input.RequestedBy,
				TreeSequenceID: input.TreeSequenceID,
				TraitTableID:   input.TraitTableID,
				Status:         StatusFailed,
				Metadata:       map[string]any{"note": "export queue full"},
				OccurredAt:     time.Now().UTC(),
			})
		}
		return Record{}, fmt.Errorf("export queue full")
	}

	return snapshot, nil
}

// Get returns a snapshot of the export record.
func (w *Worker) Get(id string) (Record, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	record, ok := w.jobs[id]
	if !ok {
		return Record{}, false
	}
	return record.copy(), true
}

func (w *Worker) process(task exportTask) {
	record, ok := w.Get(task.id)
	if !ok {
		return
	}

	w.updateStatus(task.id, StatusRunning, "")

	table, err := w.runQuery(record)
	if err != nil {
		w.fail(task.id, err.Error())
		return
	}

	artifacts := make([]Artifact, 0, len(record.Formats))
	for _, format := range record.Formats {
		payload, contentType, err := renderTable(format, table)
		if err != nil {
			w.fail(task.id, err.Error())
			return
		}
		artifact, err := w.storeArtifact(record, format, payload, contentType, len(table.Rows))
		if err != nil {
			w.fail(task.id, err.Error())
			return
		}
		artifacts = append(artifacts, artifact)
	}

	w.complete(task.id, artifacts)
}

func (w *Worker) runQuery(record Record) (*valuetable.Table, error) {
	switch record.Query {
	case QueryEdgeEffects:
		table, err := w.source.EdgeEffects(w.ctx, record.TreeSequenceID, record.TraitTableID)
		if err != nil {
			return nil, fmt.Errorf("edge effects query: %w", err)
		}
		return table, nil
	case QueryGeneticValues:
		table, err := w.source.GeneticValues(w.ctx, record.TreeSequenceID, record.TraitTableID, record.Level)
		if err != nil {
			return nil, fmt.Errorf("genetic values query: %w", err)
		}
		return table, nil
	default:
		return nil, fmt.Errorf("unknown query %q", record.Query)
	}
}

// storeArtifact persists one rendition under a job-scoped key. Job ids are
// unique, so create-only writes never collide.
func (w *Worker) storeArtifact(record Record, format Format, payload []byte, contentType string, rows int) (Artifact, error) {
	artifact := Artifact{
		ID:          fmt.Sprintf("exports/%s/%s.%s", record.ID, record.Query, format),
		Format:      format,
		ContentType: contentType,
		SizeBytes:   int64(len(payload)),
		CreatedAt:   time.Now().UTC(),
	}
	if w.store == nil {
		return artifact, nil
	}
	metadata := map[string]string{
		"export_id":     record.ID,
		"query":         string(record.Query),
		"tree_sequence": record.TreeSequenceID,
		"trait_table":   record.TraitTableID,
		"rows":          strconv.Itoa(rows),
	}
	if record.Level != "" {
		metadata["level"] = string(record.Level)
	}
	info, err := w.store.Put(w.ctx, artifact.ID, bytes.NewReader(payload), blob.PutOptions{
		ContentType: contentType,
		Metadata:    metadata,
	})
	if err != nil {
		return Artifact{}, fmt.Errorf("store artifact %s: %w", artifact.ID, err)
	}
	artifact.ETag = info.ETag
	artifact.URL = info.URL
	if !info.LastModified.IsZero() {
		artifact.CreatedAt = info.LastModified
	}
	return artifact, nil
}

// mutate applies fn to the job record under the write lock and returns the
// timestamp it stamped, so callers can audit with the same instant.
func (w *Worker) mutate(id string, fn func(*Record, time.Time)) time.Time {
	now := time.Now().UTC()
	w.mu.Lock()
	if record, ok := w.jobs[id]; ok {
		fn(record, now)
	}
	w.mu.Unlock()
	return now
}

func (w *Worker) updateStatus(id string, status Status, message string) {
	now := w.mutate(id, func(record *Record, at time.Time) {
		record.Status = status
		record.Error = message
		record.UpdatedAt = at
	})
	w.auditTransition(id, status, message, now)
}

func (w *Worker) complete(id string, artifacts []Artifact) {
	now := w.mutate(id, func(record *Record, at time.Time) {
		record.Status = StatusSucceeded
		record.Error = ""
		record.Artifacts = artifacts
		record.UpdatedAt = at
		record.CompletedAt = &at
	})
	w.auditTransition(id, StatusSucceeded, "", now)
}

func (w *Worker) fail(id, reason string) {
	now := w.mutate(id, func(record *Record, at time.Time) {
		record.Status = StatusFailed
		record.Error = reason
		record.UpdatedAt = at
		record.CompletedAt = &at
	})
	w.auditTransition(id, StatusFailed, reason, now)
}

func (w *Worker) auditTransition(id string, status Status, message string, at time.Time) {
	if w.audit == nil {
		return
	}
	w.mu.RLock()
	var actor, tsID, ttID string
	if record, ok := w.jobs[id]; ok {
		actor, tsID, ttID = record.RequestedBy, record.TreeSequenceID, record.TraitTableID
	}
	w.mu.RUnlock()
	entry := AuditEntry{
		ID:             newID(),
		Action:         auditAction,
		Actor:          actor,
		TreeSequenceID: tsID,
		TraitTableID:   ttID,
		Status:         status,
		OccurredAt:     at,
	}
	if message != "" {
		entry.Metadata = map[string]any{"note": message}
	}
	w.audit.Record(w.ctx, entry)
}

func renderTable(format Format, table *valuetable.Table) (payload []byte, contentType string, err error) {
	switch format {
	case FormatJSON:
		payload, err = json.Marshal(table)
		if err != nil {
			return nil, "", fmt.Errorf("marshal json: %w", err)
		}
		return payload, "application/json", nil
	case FormatCSV:
		buf := &bytes.Buffer{}
		writer := csv.NewWriter(buf)
		headers := make([]string, len(table.Schema))
		for i, column := range table.Schema {
			headers[i] = column.Name
		}
		if err := writer.Write(headers); err != nil {
			return nil, "", err
		}
		for _, row := range table.Rows {
			cells := make([]string, len(table.Schema))
			for i, column := range table.Schema {
				cells[i] = formatCell(row[column.Name])
			}
			if err := writer.Write(cells); err != nil {
				return nil, "", err
			}
		}
		writer.Flush()
		if err := writer.Error(); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), "text/csv", nil
	default:
		return nil, "", fmt.Errorf("unsupported export format %s", format)
	}
}

func formatCell(v any) string {
	switch n := v.(type) {
	case nil:
		return ""
	case int:
		return strconv.Itoa(n)
	case int64:
		return strconv.FormatInt(n, 10)
	case float64:
		return strconv.FormatFloat(n, 'g', -1, 64)
	default:
		return fmt.Sprint(n)
	}
}

func (r Record) copy() Record {
	dup := r
	dup.Formats = append([]Format(nil), r.Formats...)
	if len(r.Artifacts) > 0 {
		dup.Artifacts = append([]Artifact(nil), r.Artifacts...)
	}
	if r.CompletedAt != nil {
		completed := *r.CompletedAt
		dup.CompletedAt = &completed
	}
	return dup
}

func newID() string {
	raw := make([]byte, 16)
	if _, err := rand.Read(raw); err != nil {
		panic(err)
	}
	return fmt.Sprintf("%x", raw)
}
