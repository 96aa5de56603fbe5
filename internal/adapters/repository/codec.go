package repository

import (
	"encoding/json"
	"fmt"

	"github.com/okian/fulfillment/internal/domain/model"
)

// Encode marshals a record into a document under id.
func Encode(id string, record any) (Document, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return Document{}, fmt.Errorf("%w: %s: %v", ErrInvalidDoc, id, err)
	}
	return Document{ID: id, Data: data}, nil
}

// DecodePlayer decodes a player document. The document id wins over any id in the body.
func DecodePlayer(doc Document) (model.Player, error) {
	var p model.Player
	if err := decode(doc, &p); err != nil {
		return model.Player{}, err
	}
	p.ID = doc.ID
	return p, nil
}

// DecodeTournament decodes a tournament document.
func DecodeTournament(doc Document) (model.Tournament, error) {
	var t model.Tournament
	if err := decode(doc, &t); err != nil {
		return model.Tournament{}, err
	}
	t.ID = doc.ID
	return t, nil
}

// DecodeMatch decodes a match document.
func DecodeMatch(doc Document) (model.Match, error) {
	var m model.Match
	if err := decode(doc, &m); err != nil {
		return model.Match{}, err
	}
	m.ID = doc.ID
	return m, nil
}

func decode(doc Document, v any) error {
	if err := json.Unmarshal(doc.Data, v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrDecode, doc.ID, err)
	}
	return nil
}
