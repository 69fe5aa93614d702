package gservice

import (
	"context"
	"fmt"

	docs "google.golang.org/api/docs/v1"
	"google.golang.org/api/option"
)

// Docs implements core.DocumentStore on top of the Google Docs API.
type Docs struct {
	creds *Credentials
}

// NewDocs creates a Google Docs document store.
func NewDocs(creds *Credentials) *Docs {
	return &Docs{creds: creds}
}

// CreateDocument creates an empty document and returns its id.
func (d *Docs) CreateDocument(ctx context.Context, title string) (string, error) {
	svc, err := d.newSvc(ctx)
	if err != nil {
		return "", fmt.Errorf("newSvc failed: %w", err)
	}

	doc, err := svc.Documents.Create(&docs.Document{Title: title}).Do()
	if err != nil {
		return "", fmt.Errorf("documents.Create failed: %w", err)
	}
	return doc.DocumentId, nil
}

// AppendText inserts text at the top of the document body.
func (d *Docs) AppendText(ctx context.Context, docID, text string) error {
	svc, err := d.newSvc(ctx)
	if err != nil {
		return fmt.Errorf("newSvc failed: %w", err)
	}

	_, err = svc.Documents.BatchUpdate(docID, &docs.BatchUpdateDocumentRequest{
		Requests: []*docs.Request{{
			InsertText: &docs.InsertTextRequest{
				Location: &docs.Location{Index: 1},
				Text:     text,
			},
		}},
	}).Do()
	if err != nil {
		return fmt.Errorf("documents.BatchUpdate failed: %w", err)
	}
	return nil
}

func (d *Docs) newSvc(ctx context.Context) (*docs.Service, error) {
	svc, err := docs.NewService(ctx, option.WithHTTPClient(d.creds.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("docs.NewService failed: %w", err)
	}
	return svc, nil
}
