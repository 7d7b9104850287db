package convo

import (
	"sync"

	"stayhub/messenger/internal/models"
)

// ProbeFunc checks that a staged file reference is still readable. A nil
// probe accepts everything.
type ProbeFunc func(url string) error

// AttachmentStager holds the reference to a locally chosen file until the
// next send. It does not upload anything; it only classifies the file for
// preview (image vs generic document) and hands the reference to the
// session as part of the outgoing payload.
type AttachmentStager struct {
	mu     sync.Mutex
	staged *models.Attachment
	probe  ProbeFunc
}

func NewAttachmentStager(probe ProbeFunc) *AttachmentStager {
	return &AttachmentStager{probe: probe}
}

// Stage records a file reference, replacing any previously staged one. The
// kind is inferred from the content type.
func (s *AttachmentStager) Stage(name, contentType, url string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.staged = &models.Attachment{
		Name: name,
		Kind: models.KindForContentType(contentType),
		URL:  url,
	}
}

// Staged returns a copy of the currently staged attachment, or nil.
func (s *AttachmentStager) Staged() *models.Attachment {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.staged == nil {
		return nil
	}
	att := *s.staged
	return &att
}

// Take validates and returns the staged attachment, clearing the stager in
// every outcome so a stale file is never re-attached to the next message.
// A failed probe yields ErrAttachmentUnavailable; the caller must not send.
func (s *AttachmentStager) Take() (*models.Attachment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	att := s.staged
	s.staged = nil
	if att == nil {
		return nil, nil
	}
	if s.probe != nil {
		if err := s.probe(att.URL); err != nil {
			return nil, ErrAttachmentUnavailable
		}
	}
	return att, nil
}

// Clear drops any staged attachment.
func (s *AttachmentStager) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.staged = nil
}
