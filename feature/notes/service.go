package notes

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"runtime/debug"

	"note-updater/core/batch"
	"note-updater/core/storage"
	"note-updater/feature/notes/changelog"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// StoreAPI is what the service needs from a note store: the engine's
// capability interface plus enumeration of the candidate scope.
type StoreAPI interface {
	batch.NoteStore
	ListIDs(ctx context.Context) ([]string, error)
}

// Request describes one batch action.
type Request struct {
	// Mode is validate, diff, or apply.
	Mode batch.Mode

	// Records is the CSV content of the external record file. It is read
	// exactly once.
	Records io.Reader

	// FileJoinKey and NoteJoinKey override the default join key pair.
	// Empty means keep the default.
	FileJoinKey string
	NoteJoinKey string

	// Targets overrides mapping targets per file field. A target of
	// batch.NothingValue unmaps the field.
	Targets map[string]string

	// NoteIDs scopes the candidate notes. Empty means the whole store.
	NoteIDs []string

	// Confirmed is the caller-supplied confirmation required by apply.
	Confirmed bool

	// ReportObject, when set in diff mode, publishes the report to object
	// storage under this name.
	ReportObject string
}

// Result is what one batch action produced. The line log is always
// populated, aborted actions included.
type Result struct {
	Summary batch.Summary `json:"summary"`
	Updated int           `json:"updated"`
	BatchID string        `json:"batch_id,omitempty"`
	Report  []byte        `json:"report,omitempty"`
	Log     []string      `json:"log"`
}

// Service wires the batch engine to the note store, the audit change log,
// and the report sinks. It is the action boundary: engine failures and
// internal panics surface as ERROR lines in the result log and an error
// return, never as a crash.
type Service struct {
	store  StoreAPI
	logger *zap.Logger

	client storage.Client
	bucket string

	newChangeLog func() batch.ChangeLog
	checkpoint   batch.CheckpointFunc
}

// NewService creates a service over the given database. client may be nil
// when no report storage is configured.
func NewService(db *gorm.DB, client storage.Client, bucket string, logger *zap.Logger) *Service {
	s := &Service{
		store:  NewStore(db),
		logger: logger,
		client: client,
		bucket: bucket,
		newChangeLog: func() batch.ChangeLog {
			return changelog.New(db)
		},
	}
	s.checkpoint = func(ctx context.Context, label string) error {
		// The host's restore mechanism; its bookkeeping is not ours.
		logger.Info("Registering checkpoint", zap.String("label", label))
		return nil
	}
	return s
}

// Run executes one batch action and returns its result. The returned error
// is also recorded as an ERROR line in the result log; earlier progress
// lines stay visible.
func (s *Service) Run(ctx context.Context, req Request) (res *Result, err error) {
	log := &batch.Log{}
	res = &Result{}

	defer func() {
		if r := recover(); r != nil {
			log.Errorf("unexpected failure: %v\n%s", r, debug.Stack())
			s.logger.Error("batch action panicked", zap.Any("panic", r))
			err = &batch.InternalError{Msg: fmt.Sprintf("unexpected failure: %v", r)}
		}
		res.Log = log.Lines()
	}()

	if err := s.run(ctx, req, log, res); err != nil {
		log.Errorf("%v", err)
		s.logger.Error("batch action failed", zap.String("mode", string(req.Mode)), zap.Error(err))
		return res, err
	}
	return res, nil
}

func (s *Service) run(ctx context.Context, req Request, log *batch.Log, res *Result) error {
	src, err := batch.LoadCSV(req.Records)
	if err != nil {
		return err
	}

	ids := req.NoteIDs
	if len(ids) == 0 {
		ids, err = s.store.ListIDs(ctx)
		if err != nil {
			return err
		}
	}
	if len(ids) == 0 {
		return &batch.ValidationError{Reason: "no candidate notes"}
	}

	mapping, key, err := s.resolve(ctx, src, ids, req)
	if err != nil {
		return err
	}

	log.Printf("Join key: File field '%s' -> Note field '%s'", key.FileField, key.NoteField)
	for _, p := range mapping {
		log.Printf("File field '%s' -> Note field '%s'", p.FileField, p.NoteField)
	}

	pairs, err := batch.NewJoiner(s.store, log).Join(ctx, src, key, ids)
	if err != nil {
		return err
	}

	cs, summary, err := batch.NewDiffer(s.store, log).Changes(ctx, pairs, mapping)
	if err != nil {
		return err
	}
	res.Summary = *summary

	switch req.Mode {
	case batch.ModeValidate:
		return nil

	case batch.ModeDiff:
		var buf bytes.Buffer
		if err := batch.WriteReport(cs, &buf); err != nil {
			return err
		}
		res.Report = buf.Bytes()
		if req.ReportObject != "" {
			if err := s.publishReport(ctx, req.ReportObject, res.Report); err != nil {
				return err
			}
			log.Printf("Published report to %s/%s", s.bucket, req.ReportObject)
		}
		return nil

	case batch.ModeApply:
		if cs.Empty() {
			return nil
		}
		cl := s.newChangeLog()
		defer cl.Close()

		if withID, ok := cl.(interface{ BatchID() string }); ok {
			res.BatchID = withID.BatchID()
		}

		updated, err := batch.NewExecutor(s.store, cl, s.checkpoint, log).Apply(ctx, cs, req.Confirmed)
		res.Updated = updated
		return err

	default:
		return &batch.ValidationError{Reason: fmt.Sprintf("unexpected mode: %s", req.Mode)}
	}
}

// resolve seeds the default selections from the file header and the note
// model, applies the request's overrides in header order, and validates.
func (s *Service) resolve(ctx context.Context, src *batch.Source, ids []string, req Request) (batch.FieldMapping, batch.JoinKeySpec, error) {
	modelID, err := s.store.SchemaOf(ctx, ids[0])
	if err != nil {
		return nil, batch.JoinKeySpec{}, err
	}
	noteFields, err := s.store.FieldNames(ctx, modelID)
	if err != nil {
		return nil, batch.JoinKeySpec{}, err
	}

	sel := batch.DefaultSelections(src.Fields, noteFields)
	if req.FileJoinKey != "" {
		sel = sel.SetFileJoinKey(req.FileJoinKey)
	}
	if req.NoteJoinKey != "" {
		sel = sel.SetNoteJoinKey(req.NoteJoinKey)
	}
	for _, fileField := range src.Fields {
		if target, ok := req.Targets[fileField]; ok {
			sel = sel.SetTarget(fileField, target)
		}
	}

	return sel.Resolve()
}

func (s *Service) publishReport(ctx context.Context, object string, report []byte) error {
	if s.client == nil {
		return &batch.ValidationError{Reason: "no report storage configured"}
	}

	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check report bucket: %w", err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create report bucket: %w", err)
		}
	}

	_, err = s.client.PutObject(ctx, s.bucket, object,
		bytes.NewReader(report), int64(len(report)),
		minio.PutObjectOptions{ContentType: "text/html"})
	if err != nil {
		return fmt.Errorf("failed to publish report: %w", err)
	}
	return nil
}
