// Package convert runs one text-to-document conversion: parse the MCQ text,
// render it in the requested format and, when configured, archive the result.
package convert

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mind-engage/mcq-docgen/internal/archive"
	"github.com/mind-engage/mcq-docgen/internal/mcq"
	"github.com/mind-engage/mcq-docgen/internal/render"
	_ "github.com/mind-engage/mcq-docgen/internal/render/docx"
	_ "github.com/mind-engage/mcq-docgen/internal/render/qti"
	"github.com/mind-engage/mcq-docgen/internal/storage"
	syncx "github.com/mind-engage/mcq-docgen/internal/sync"
)

var (
	ErrEmptyInput    = errors.New("no text provided")
	ErrUnknownFormat = errors.New("unknown output format")
)

type Request struct {
	Text      string
	Format    string // "" means the service default
	CreatedBy string
}

type Result struct {
	ID          string // empty when the result was not archived
	Filename    string
	ContentType string
	Body        []byte
	Records     int
}

// EventSink receives archive events. *syncx.EventRepo satisfies it.
type EventSink interface {
	AppendJSON(ctx context.Context, typ, key string, payload any) error
}

type Service struct {
	parser        *mcq.Parser
	basename      string
	defaultFormat string

	archive archive.Store
	blobs   storage.BlobStore
	events  EventSink

	now func() time.Time
}

type Option func(*Service)

// WithBasename sets the download name without extension (default MCQ_Output).
func WithBasename(name string) Option {
	return func(s *Service) {
		if name != "" {
			s.basename = name
		}
	}
}

func WithDefaultFormat(format string) Option {
	return func(s *Service) {
		if format != "" {
			s.defaultFormat = format
		}
	}
}

// WithArchive stores every rendered document in blobs and its metadata in store.
func WithArchive(store archive.Store, blobs storage.BlobStore) Option {
	return func(s *Service) { s.archive, s.blobs = store, blobs }
}

func WithEvents(sink EventSink) Option {
	return func(s *Service) { s.events = sink }
}

func NewService(p *mcq.Parser, opts ...Option) *Service {
	if p == nil {
		p = mcq.NewParser(mcq.JoinLines)
	}
	s := &Service{
		parser:        p,
		basename:      "MCQ_Output",
		defaultFormat: "docx",
		now:           time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Archived reports whether conversions are being stored.
func (s *Service) Archived() bool { return s.archive != nil && s.blobs != nil }

// Parse runs only the parser; blank input is rejected.
func (s *Service) Parse(text string) ([]mcq.Record, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}
	var recs []mcq.Record
	err := guard(func() error {
		recs = s.parser.Parse(text)
		return nil
	})
	return recs, err
}

func (s *Service) Convert(ctx context.Context, req Request) (Result, error) {
	if strings.TrimSpace(req.Text) == "" {
		return Result{}, ErrEmptyInput
	}
	format := strings.ToLower(strings.TrimSpace(req.Format))
	if format == "" {
		format = s.defaultFormat
	}
	r, ok := render.Lookup(format)
	if !ok {
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	var (
		recs []mcq.Record
		body []byte
	)
	err := guard(func() error {
		recs = s.parser.Parse(req.Text)
		var err error
		body, err = r.Render(ctx, recs)
		return err
	})
	if err != nil {
		return Result{}, fmt.Errorf("render %s: %w", format, err)
	}

	res := Result{
		Filename:    s.basename + r.Extension(),
		ContentType: r.ContentType(),
		Body:        body,
		Records:     len(recs),
	}
	if s.Archived() {
		id, err := s.store(ctx, req, format, res)
		if err != nil {
			// the caller still gets the document
			log.Printf("archive conversion: %v", err)
		} else {
			res.ID = id
		}
	}
	return res, nil
}

func (s *Service) store(ctx context.Context, req Request, format string, res Result) (string, error) {
	id := uuid.NewString()
	key, err := s.blobs.Put("conversions/"+id+extOf(res.Filename), bytes.NewReader(res.Body))
	if err != nil {
		return "", fmt.Errorf("put blob: %w", err)
	}
	sum := sha256.Sum256([]byte(req.Text))
	c := archive.Conversion{
		ID:          id,
		Format:      format,
		Filename:    res.Filename,
		BlobKey:     key,
		InputSHA256: hex.EncodeToString(sum[:]),
		Questions:   res.Records,
		Bytes:       int64(len(res.Body)),
		CreatedBy:   req.CreatedBy,
		CreatedAt:   s.now().Unix(),
	}
	if err := s.archive.Put(ctx, c); err != nil {
		return "", fmt.Errorf("put metadata: %w", err)
	}
	if s.events != nil {
		if err := s.events.AppendJSON(ctx, syncx.TypeConversionArchived, id, c); err != nil {
			log.Printf("event log append %s: %v", id, err)
		}
	}
	return id, nil
}

func extOf(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i:]
	}
	return ""
}

// guard turns a panic in fn into an error so a bad input never takes the process down.
func guard(fn func() error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			log.Printf("panic during conversion: %v\n%s", p, debug.Stack())
			err = fmt.Errorf("internal error: %v", p)
		}
	}()
	return fn()
}
