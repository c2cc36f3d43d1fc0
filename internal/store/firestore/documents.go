package firestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path"

	"google.golang.org/api/googleapi"
	fsapi "google.golang.org/api/firestore/v1"
	"google.golang.org/api/option"
)

// document is one stored entity: its ID (last path segment) and typed fields.
type document struct {
	ID     string
	Fields map[string]value
}

// value mirrors the REST encoding of a Firestore value for the member types
// this package reads and writes.
type value struct {
	StringValue  *string  `json:"stringValue,omitempty"`
	DoubleValue  *float64 `json:"doubleValue,omitempty"`
	IntegerValue *string  `json:"integerValue,omitempty"`
}

// documents is the subset of the Firestore API the store needs.
type documents interface {
	List(ctx context.Context, collection, orderBy string) ([]document, error)
	// Create stores fields under a server-assigned ID and returns it.
	Create(ctx context.Context, collection string, fields map[string]value) (string, error)
	// Set writes fields at id. With mustExist, a missing document is
	// errDocumentMissing.
	Set(ctx context.Context, collection, id string, fields map[string]value, mustExist bool) error
	Delete(ctx context.Context, collection, id string) error
}

var errDocumentMissing = errors.New("document does not exist")

const listPageSize = 300

// restDocuments talks to the Firestore REST API.
type restDocuments struct {
	svc    *fsapi.Service
	parent string
}

func newRESTDocuments(ctx context.Context, projectID, database string, opts ...option.ClientOption) (*restDocuments, error) {
	svc, err := fsapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create firestore service: %w", err)
	}
	return &restDocuments{
		svc:    svc,
		parent: fmt.Sprintf("projects/%s/databases/%s/documents", projectID, database),
	}, nil
}

func (r *restDocuments) name(collection, id string) string {
	return r.parent + "/" + collection + "/" + id
}

func (r *restDocuments) List(ctx context.Context, collection, orderBy string) ([]document, error) {
	var out []document
	pageToken := ""
	for {
		call := r.svc.Projects.Databases.Documents.List(r.parent, collection).
			PageSize(listPageSize).
			Context(ctx)
		if orderBy != "" {
			call = call.OrderBy(orderBy)
		}
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		resp, err := call.Do()
		if err != nil {
			return nil, err
		}
		for _, d := range resp.Documents {
			doc, err := fromAPI(d)
			if err != nil {
				return nil, err
			}
			out = append(out, doc)
		}
		if resp.NextPageToken == "" {
			return out, nil
		}
		pageToken = resp.NextPageToken
	}
}

func (r *restDocuments) Create(ctx context.Context, collection string, fields map[string]value) (string, error) {
	doc, err := toAPI(fields)
	if err != nil {
		return "", err
	}
	created, err := r.svc.Projects.Databases.Documents.
		CreateDocument(r.parent, collection, doc).
		Context(ctx).
		Do()
	if err != nil {
		return "", err
	}
	return path.Base(created.Name), nil
}

func (r *restDocuments) Set(ctx context.Context, collection, id string, fields map[string]value, mustExist bool) error {
	doc, err := toAPI(fields)
	if err != nil {
		return err
	}
	call := r.svc.Projects.Databases.Documents.Patch(r.name(collection, id), doc).Context(ctx)
	if mustExist {
		call = call.CurrentDocumentExists(true)
	}
	if _, err := call.Do(); err != nil {
		var gerr *googleapi.Error
		if mustExist && errors.As(err, &gerr) && gerr.Code == http.StatusNotFound {
			return errDocumentMissing
		}
		return err
	}
	return nil
}

func (r *restDocuments) Delete(ctx context.Context, collection, id string) error {
	_, err := r.svc.Projects.Databases.Documents.Delete(r.name(collection, id)).Context(ctx).Do()
	return err
}

// Values cross the generated types as JSON so the REST encoding is the only
// contract between the two representations.
func toAPI(fields map[string]value) (*fsapi.Document, error) {
	raw, err := json.Marshal(struct {
		Fields map[string]value `json:"fields"`
	}{fields})
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	doc := &fsapi.Document{}
	if err := json.Unmarshal(raw, doc); err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return doc, nil
}

func fromAPI(d *fsapi.Document) (document, error) {
	raw, err := json.Marshal(d)
	if err != nil {
		return document{}, fmt.Errorf("decode document %s: %w", d.Name, err)
	}
	var wire struct {
		Name   string           `json:"name"`
		Fields map[string]value `json:"fields"`
	}
	if err := json.Unmarshal(raw, &wire); err != nil {
		return document{}, fmt.Errorf("decode document %s: %w", d.Name, err)
	}
	return document{ID: path.Base(wire.Name), Fields: wire.Fields}, nil
}
