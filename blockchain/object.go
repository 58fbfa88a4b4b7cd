package blockchain

import (
	"bytes"
	"encoding/json"

	"github.com/jlynch25/ticketbox/txerrors"
)

// ContentKind tags the shape of an object's content.
type ContentKind int

// content kinds
const (
	ContentUnknown ContentKind = iota
	ContentMoveObject
	ContentPackage
)

// Content struct
type Content struct {
	DataType          string      `json:"dataType"`
	Type              string      `json:"type"`
	HasPublicTransfer bool        `json:"hasPublicTransfer"`
	Fields            interface{} `json:"fields"`
}

// Kind function
func (c *Content) Kind() ContentKind {
	if c == nil {
		return ContentUnknown
	}
	switch c.DataType {
	case "moveObject":
		return ContentMoveObject
	case "package":
		return ContentPackage
	}
	return ContentUnknown
}

// FieldMap returns the field map of a move object, if there is one.
func (c *Content) FieldMap() (map[string]interface{}, bool) {
	if c == nil {
		return nil, false
	}
	fields, ok := c.Fields.(map[string]interface{})
	if !ok || fields == nil {
		return nil, false
	}
	return fields, true
}

// ObjectData struct
type ObjectData struct {
	ObjectID string      `json:"objectId"`
	Version  interface{} `json:"version"`
	Digest   string      `json:"digest"`
	Type     string      `json:"type"`
	Owner    interface{} `json:"owner"`
	Content  *Content    `json:"content"`
}

// ObjectError struct
type ObjectError struct {
	Code     string `json:"code"`
	ObjectID string `json:"object_id"`
}

// ObjectResponse is the reply to a getObject query.
type ObjectResponse struct {
	Data  *ObjectData  `json:"data"`
	Error *ObjectError `json:"error"`
}

// Object unwraps the response. A response without data, or one the node
// flags as missing or deleted, is a not-found error.
func (r *ObjectResponse) Object(id string) (*ObjectData, error) {
	if r == nil {
		return nil, txerrors.NotFound("object", id)
	}
	if r.Error != nil {
		switch r.Error.Code {
		case "notExists", "deleted", "dynamicFieldNotFound":
			return nil, txerrors.NotFound("object", id)
		}
		return nil, txerrors.New(txerrors.KindSubmission, "object %s: %s", id, r.Error.Code)
	}
	if r.Data == nil {
		return nil, txerrors.NotFound("object", id)
	}
	return r.Data, nil
}

// ParseObjectResponse decodes a raw getObject reply.
func ParseObjectResponse(data []byte) (*ObjectResponse, error) {
	var resp ObjectResponse
	if err := decodeJSON(data, &resp); err != nil {
		return nil, txerrors.Wrap(txerrors.KindDecode, err, "object response")
	}
	// bare object data without the {data, error} envelope
	if resp.Data == nil && resp.Error == nil {
		var obj ObjectData
		if err := decodeJSON(data, &obj); err == nil && (obj.ObjectID != "" || obj.Content != nil) {
			resp.Data = &obj
		}
	}
	return &resp, nil
}

// decodeJSON keeps numbers as json.Number so u64 values survive intact.
func decodeJSON(data []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}
