// Package ingestion feeds web pages into a user's knowledge base. It
// extracts readable text with the content extractor, splits it into
// overlapping chunks, and stores each chunk as a document. This pipeline is
// invoked by the `kompow ingest` CLI command and the ingest API endpoint.
package ingestion

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/kompow/kompow-go/internal/kb"
	"github.com/kompow/kompow-go/internal/webcontent"
)

// Config holds the configuration for the ingestion pipeline.
type Config struct {
	// ChunkSize is the maximum number of characters per document chunk.
	// Defaults to 1000 if zero.
	ChunkSize int

	// ChunkOverlap is the number of characters to overlap between
	// consecutive chunks. Defaults to ChunkSize/10 when out of range.
	ChunkOverlap int
}

// Result summarizes one ingestion batch.
type Result struct {
	// Ingested counts URLs whose content reached the knowledge base.
	Ingested int

	// Skipped counts URLs that yielded no extractable content.
	Skipped int

	// Chunks counts stored document chunks across all URLs.
	Chunks int
}

// Pipeline orchestrates the fetch → extract → chunk → store flow.
type Pipeline struct {
	extractor *webcontent.Extractor
	cfg       *Config
	log       *slog.Logger
}

// NewPipeline constructs a Pipeline from the provided dependencies and config.
func NewPipeline(extractor *webcontent.Extractor, cfg *Config, log *slog.Logger) (*Pipeline, error) {
	if extractor == nil {
		return nil, fmt.Errorf("ingestion: extractor must not be nil")
	}
	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 1000
	}
	if cfg.ChunkOverlap < 0 || cfg.ChunkOverlap >= cfg.ChunkSize {
		cfg.ChunkOverlap = cfg.ChunkSize / 10
	}
	if log == nil {
		log = slog.Default()
	}

	return &Pipeline{extractor: extractor, cfg: cfg, log: log}, nil
}

// Ingest fetches each URL and stores its chunked content in target. URLs
// with no extractable content are skipped, not fatal; a knowledge base that
// cannot accept writes (no embedder) aborts the batch with that error.
// Progress is reported via the optional progress callback.
func (p *Pipeline) Ingest(ctx context.Context, target *kb.KnowledgeBase, urls []string, progress func(msg string)) (*Result, error) {
	if target == nil {
		return nil, fmt.Errorf("ingestion: knowledge base must not be nil")
	}
	if progress == nil {
		progress = func(string) {}
	}

	res := &Result{}
	for _, url := range urls {
		progress(fmt.Sprintf("fetching %s", url))

		text, ok := p.extractor.FetchURLContent(ctx, url)
		if !ok {
			res.Skipped++
			progress(fmt.Sprintf("skipped %s: no extractable content", url))
			continue
		}

		chunks := p.chunk(text)
		for i, chunk := range chunks {
			meta := map[string]string{
				"source":      url,
				"chunk_index": strconv.Itoa(i),
			}
			if err := target.AddDocument(ctx, chunk, meta, chunkID(url, i)); err != nil {
				return res, fmt.Errorf("ingestion: storing chunk %d of %s: %w", i, url, err)
			}
		}

		res.Ingested++
		res.Chunks += len(chunks)
		progress(fmt.Sprintf("ingested %d chunks from %s", len(chunks), url))
	}

	p.log.Info("ingestion batch finished",
		"user", target.UserID(),
		"ingested", res.Ingested,
		"skipped", res.Skipped,
		"chunks", res.Chunks)
	return res, nil
}

// chunk splits text into overlapping chunks of up to cfg.ChunkSize bytes.
// Cut points are pulled back to rune boundaries so a multi-byte character is
// never split across stored chunks.
func (p *Pipeline) chunk(text string) []string {
	text = strings.TrimSpace(text)
	if len(text) == 0 {
		return nil
	}

	var chunks []string
	size := p.cfg.ChunkSize
	overlap := p.cfg.ChunkOverlap

	for start := 0; start < len(text); {
		end := start + size
		if end >= len(text) {
			end = len(text)
		} else {
			for end > start && !utf8.RuneStart(text[end]) {
				end--
			}
		}
		chunks = append(chunks, text[start:end])
		if end == len(text) {
			break
		}
		start += size - overlap
		for start < len(text) && !utf8.RuneStart(text[start]) {
			start++
		}
	}

	return chunks
}

// chunkID generates a deterministic ID for a document chunk based on its
// source URL and chunk index.
func chunkID(sourceURL string, index int) string {
	h := sha256.Sum256([]byte(fmt.Sprintf("%s#%d", sourceURL, index)))
	return fmt.Sprintf("%x", h[:16])
}
