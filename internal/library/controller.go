// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package library

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jeranaias/knowme-tui/internal/api"
	"github.com/jeranaias/knowme-tui/internal/model"
	"github.com/jeranaias/knowme-tui/internal/notice"
)

// Notice texts.
const (
	NoticeNotPDF         = "Please select a PDF file"
	NoticeUploadFailed   = "Upload failed. Please try again."
	NoticeDeleteFailed   = "Delete failed. Please try again."
	NoticeListFailed     = "Failed to load documents"
	NoticeDeleted        = "Document deleted successfully"
	noticeUploadedFmt    = "Successfully uploaded %s. %d chunks stored."
	noticeStillUploading = "An upload is already in progress"
)

var (
	// ErrBusy is returned when an upload is requested while one is running.
	ErrBusy = errors.New("library: an upload is already in progress")

	// ErrNoPendingDelete is returned by ConfirmDelete outside the
	// confirmation phase.
	ErrNoPendingDelete = errors.New("library: no delete awaiting confirmation")
)

// Backend is the subset of the API client the library needs.
type Backend interface {
	ListDocuments(ctx context.Context) ([]api.DocumentInfo, error)
	UploadDocument(ctx context.Context, fileName string, r io.Reader) (*api.UploadResult, error)
	DeleteDocument(ctx context.Context, name string) (*api.DeleteResult, error)
}

// Controller keeps the document list in step with the backend. Documents
// appear only after the backend confirms an upload and disappear only
// after it confirms a delete.
type Controller struct {
	backend Backend
	notices notice.Poster
	log     *zap.Logger
	now     func() time.Time

	mu        sync.Mutex
	docs      []model.Document
	uploading bool
	del       DeleteState
}

// NewController wires a controller. notices may be nil.
func NewController(backend Backend, notices notice.Poster, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{
		backend: backend,
		notices: notices,
		log:     log.Named("library"),
		now:     time.Now,
	}
}

// =============================================================================
// LISTING
// =============================================================================

// Refresh replaces the list with the backend's.
func (c *Controller) Refresh(ctx context.Context) error {
	infos, err := c.backend.ListDocuments(ctx)
	return c.ApplyListing(infos, err)
}

// ApplyListing installs the result of a ListDocuments call. On error the
// current list is kept. Duplicate names collapse to the first entry.
func (c *Controller) ApplyListing(infos []api.DocumentInfo, err error) error {
	if err != nil {
		c.post(notice.KindError, NoticeListFailed)
		c.log.Warn("document listing failed", zap.Error(err))
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	prev := make(map[string]model.Document, len(c.docs))
	for _, d := range c.docs {
		prev[d.Key()] = d
	}

	seen := make(map[string]bool, len(infos))
	docs := make([]model.Document, 0, len(infos))
	for _, info := range infos {
		key := model.DocumentKey(info.Name)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true

		d := model.Document{Name: info.Name, Size: info.Size, SizeKnown: info.SizeKnown}
		if old, ok := prev[key]; ok {
			d.UploadedAt = old.UploadedAt
			if !d.SizeKnown && old.SizeKnown {
				d.Size, d.SizeKnown = old.Size, true
			}
		}
		docs = append(docs, d)
	}
	c.docs = docs
	c.log.Debug("document list refreshed", zap.Int("count", len(docs)))
	return nil
}

// =============================================================================
// UPLOAD
// =============================================================================

// BeginUpload validates name and marks an upload as running. It returns
// false, with a notice, for non-PDF names or while another upload runs.
func (c *Controller) BeginUpload(name string) bool {
	if !model.IsPDFName(name) {
		c.post(notice.KindError, NoticeNotPDF)
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.uploading {
		c.post(notice.KindWarning, noticeStillUploading)
		return false
	}
	c.uploading = true
	return true
}

// FinishUpload records the outcome of an upload begun with BeginUpload.
// size is the local file size in bytes, or -1 when unknown.
func (c *Controller) FinishUpload(name string, size int64, res *api.UploadResult, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.uploading = false

	if err != nil || res == nil {
		msg := api.DetailOf(err)
		if api.IsTransport(err) || msg == "" {
			msg = NoticeUploadFailed
		}
		c.post(notice.KindError, msg)
		c.log.Warn("upload failed", zap.String("file", name), zap.Error(err))
		return
	}

	stored := res.Filename
	if stored == "" {
		stored = filepath.Base(name)
	}
	doc := model.Document{Name: stored, UploadedAt: c.now()}
	if size >= 0 {
		doc.Size, doc.SizeKnown = size, true
	}

	if i := c.indexLocked(doc.Key()); i >= 0 {
		c.docs[i] = doc
	} else {
		c.docs = append(c.docs, doc)
	}

	c.post(notice.KindSuccess, fmt.Sprintf(noticeUploadedFmt, stored, res.ChunksStored))
	c.log.Info("document uploaded", zap.String("file", stored), zap.Int("chunks", res.ChunksStored))
}

// Upload sends r to the backend as name and records the outcome.
func (c *Controller) Upload(ctx context.Context, name string, size int64, r io.Reader) error {
	if !model.IsPDFName(name) {
		c.post(notice.KindError, NoticeNotPDF)
		return &api.Error{Kind: api.KindValidation, Detail: NoticeNotPDF}
	}
	if !c.BeginUpload(name) {
		return ErrBusy
	}
	res, err := c.backend.UploadDocument(ctx, name, r)
	c.FinishUpload(name, size, res, err)
	return err
}

// UploadFile uploads the file at path. The extension is checked before
// the file is touched.
func (c *Controller) UploadFile(ctx context.Context, path string) error {
	name := filepath.Base(path)
	if !model.IsPDFName(name) {
		c.post(notice.KindError, NoticeNotPDF)
		return &api.Error{Kind: api.KindValidation, Detail: NoticeNotPDF}
	}

	f, err := os.Open(path)
	if err != nil {
		c.post(notice.KindError, fmt.Sprintf("Could not open %s", name))
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	size := int64(-1)
	if info, err := f.Stat(); err == nil {
		size = info.Size()
	}
	return c.Upload(ctx, name, size, f)
}

// =============================================================================
// DELETE
// =============================================================================

// RequestDelete asks for confirmation to delete name. It is refused while
// another delete is pending or running, and for names not in the list.
func (c *Controller) RequestDelete(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.del.Idle() {
		return false
	}
	i := c.indexLocked(model.DocumentKey(name))
	if i < 0 {
		return false
	}
	c.del = DeleteState{Phase: PhaseAwaitingConfirmation, Name: c.docs[i].Name}
	return true
}

// CancelDelete abandons a pending confirmation. It has no effect once the
// delete call is running.
func (c *Controller) CancelDelete() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.del.Confirming() {
		c.del = DeleteState{}
	}
}

// BeginDelete confirms the pending delete and returns the name to send.
func (c *Controller) BeginDelete() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.del.Confirming() {
		return "", false
	}
	c.del.Phase = PhaseDeleting
	return c.del.Name, true
}

// FinishDelete records the outcome of the delete call for name. The
// document is removed only on success.
func (c *Controller) FinishDelete(name string, res *api.DeleteResult, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.del.Deleting() || c.del.Name != name {
		c.log.Warn("unexpected delete completion", zap.String("file", name))
		return
	}
	c.del = DeleteState{}

	if err != nil {
		msg := api.DetailOf(err)
		if api.IsTransport(err) || msg == "" {
			msg = NoticeDeleteFailed
		}
		c.post(notice.KindError, msg)
		c.log.Warn("delete failed", zap.String("file", name), zap.Error(err))
		return
	}

	if i := c.indexLocked(model.DocumentKey(name)); i >= 0 {
		c.docs = append(c.docs[:i:i], c.docs[i+1:]...)
	}

	msg := NoticeDeleted
	if res != nil && res.Message != "" {
		msg = res.Message
	}
	c.post(notice.KindSuccess, msg)
	c.log.Info("document deleted", zap.String("file", name))
}

// ConfirmDelete runs the confirmed delete to completion.
func (c *Controller) ConfirmDelete(ctx context.Context) error {
	name, ok := c.BeginDelete()
	if !ok {
		return ErrNoPendingDelete
	}
	res, err := c.backend.DeleteDocument(ctx, name)
	c.FinishDelete(name, res, err)
	return err
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Documents returns a copy of the list in display order.
func (c *Controller) Documents() []model.Document {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]model.Document, len(c.docs))
	copy(out, c.docs)
	return out
}

// Count is the number of documents.
func (c *Controller) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.docs)
}

// Lookup finds a document by name.
func (c *Controller) Lookup(name string) (model.Document, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.indexLocked(model.DocumentKey(name)); i >= 0 {
		return c.docs[i], true
	}
	return model.Document{}, false
}

// Uploading reports whether an upload is running.
func (c *Controller) Uploading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.uploading
}

// DeleteState returns the current delete phase.
func (c *Controller) DeleteState() DeleteState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.del
}

// Busy reports whether a blocking overlay should be shown.
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.uploading || c.del.Deleting()
}

func (c *Controller) indexLocked(key string) int {
	for i, d := range c.docs {
		if d.Key() == key {
			return i
		}
	}
	return -1
}

func (c *Controller) post(kind notice.Kind, text string) {
	if c.notices != nil {
		c.notices.Post(kind, text)
	}
}
