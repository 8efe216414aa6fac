package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/jask/triage/internal/cards"
	"github.com/jask/triage/internal/database/repository"
)

// Format is a deck file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

var ErrUnknownFormat = errors.New("unknown deck format")

// cardNamespace derives stable ids for imported cards that carry none.
var cardNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("triage:card"))

// ImportService loads decks from YAML or JSON files into the cards table.
type ImportService struct {
	Cards  *repository.CardRepo
	Logger *zap.Logger
}

type ImportResult struct {
	Imported int
	Skipped  int
	Errors   []error
}

// FormatFor picks the format from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("%s: %w", path, ErrUnknownFormat)
}

func (s *ImportService) ImportFile(ctx context.Context, path string) (ImportResult, error) {
	format, err := FormatFor(path)
	if err != nil {
		return ImportResult{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return ImportResult{}, err
	}
	defer f.Close()
	return s.Import(ctx, f, format)
}

// Import reads a deck and stores every valid card not already present.
// A deck is either a list of cards or a mapping with a "cards" list. Cards
// without an id get one derived from category, sender and subject, so
// re-importing the same file is a no-op. Invalid cards are reported in
// ImportResult.Errors and skipped; the returned error is for unreadable input.
func (s *ImportService) Import(ctx context.Context, r io.Reader, format Format) (ImportResult, error) {
	deck, err := decodeDeck(r, format)
	if err != nil {
		return ImportResult{}, err
	}
	res := ImportResult{}
	for i, c := range deck {
		if c.ID == "" {
			c.ID = derivedID(c)
		}
		if err := c.Validate(); err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("card %d: %w", i+1, err))
			continue
		}
		exists, err := s.Cards.Exists(ctx, c.ID)
		if err != nil {
			return res, err
		}
		if exists {
			res.Skipped++
			continue
		}
		if err := s.Cards.Upsert(ctx, c); err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("card %d insert: %w", i+1, err))
			continue
		}
		res.Imported++
	}
	s.logger().Info("deck imported",
		zap.Int("imported", res.Imported),
		zap.Int("skipped", res.Skipped),
		zap.Int("errors", len(res.Errors)),
	)
	return res, nil
}

func (s *ImportService) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

type deckDoc struct {
	Cards []cards.Card `json:"cards" yaml:"cards"`
}

func decodeDeck(r io.Reader, format Format) ([]cards.Card, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}
	switch format {
	case FormatJSON:
		if trimmed[0] == '[' {
			var list []cards.Card
			if err := json.Unmarshal(trimmed, &list); err != nil {
				return nil, fmt.Errorf("decode json deck: %w", err)
			}
			return list, nil
		}
		var doc deckDoc
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return nil, fmt.Errorf("decode json deck: %w", err)
		}
		return doc.Cards, nil
	case FormatYAML:
		var node yaml.Node
		if err := yaml.Unmarshal(trimmed, &node); err != nil {
			return nil, fmt.Errorf("decode yaml deck: %w", err)
		}
		if len(node.Content) > 0 && node.Content[0].Kind == yaml.SequenceNode {
			var list []cards.Card
			if err := node.Decode(&list); err != nil {
				return nil, fmt.Errorf("decode yaml deck: %w", err)
			}
			return list, nil
		}
		var doc deckDoc
		if err := node.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode yaml deck: %w", err)
		}
		return doc.Cards, nil
	}
	return nil, fmt.Errorf("%q: %w", format, ErrUnknownFormat)
}

func derivedID(c cards.Card) string {
	key := strings.Join([]string{string(c.Category), strings.ToLower(c.Metadata.From), c.Metadata.Subject}, "\x00")
	return uuid.NewSHA1(cardNamespace, []byte(key)).String()
}
