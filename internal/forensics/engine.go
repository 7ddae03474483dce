// Package forensics implements the dual-layer document forensics engine:
// an exact SHA-256 digest check and a 64-bit perceptual-fingerprint check
// against a growing in-memory archive of prior submissions, merged under
// highest-risk-wins rules.
package forensics

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/pawan/claimlens/internal/phash"
	"github.com/pawan/claimlens/internal/render"
)

// DefaultThreshold is the Hamming-distance cutoff for the fraud flag.
const DefaultThreshold = 10

// Config holds engine construction parameters.
type Config struct {
	// Threshold is the fraud-flag Hamming cutoff; 0 means DefaultThreshold.
	Threshold int
	// Renderer overrides the default backend pipeline, mainly for tests.
	Renderer *render.Pipeline
}

// Engine is shared across all concurrent analysis requests in a process.
// Rendering and hashing run outside the lock; the single mutex guards both
// archive maps so scan-then-insert and lookup-then-upsert are atomic.
type Engine struct {
	threshold int
	renderer  *render.Pipeline

	mu      sync.Mutex
	archive *archive
}

// New creates an engine with an empty archive.
func New(cfg Config) *Engine {
	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultThreshold
	}
	if cfg.Renderer == nil {
		cfg.Renderer = render.Default()
	}
	return &Engine{
		threshold: cfg.Threshold,
		renderer:  cfg.Renderer,
		archive:   newArchive(),
	}
}

// ArchiveSize returns the current fingerprint-archive count.
func (e *Engine) ArchiveSize() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.archive.size()
}

// AnalyzeAgainstArchive runs the full dual-layer analysis and records the
// submission in both archives. It never fails the caller: malformed or
// unreadable input degrades to a low-confidence or validation-failure report.
func (e *Engine) AnalyzeAgainstArchive(ctx context.Context, path string) FindingReport {
	name := filepath.Base(path)

	if err := ValidateFile(path); err != nil {
		return e.validationReport(name, err)
	}

	digest, err := fileSHA256(path)
	if err != nil {
		// The file vanished or became unreadable after validation.
		return e.validationReport(name, &ValidationError{Reason: fmt.Sprintf("File unreadable: %v", err)})
	}

	// Expensive work happens before the critical section.
	raster, backend, rendered := e.renderer.Render(ctx, path)
	var fp phash.Fingerprint
	hashed := false
	if rendered {
		if fp, err = phash.FromImage(raster); err != nil {
			log.Printf("[ENGINE] fingerprint failed for %s: %v", name, err)
		} else {
			hashed = true
		}
	} else {
		log.Printf("[ENGINE] could not render %s, fingerprint layer skipped", name)
	}

	// Critical section: digest lookup-then-upsert and fingerprint
	// scan-then-insert, atomically against concurrent submissions.
	e.mu.Lock()
	prevSubmitter, digestHit := e.archive.lookupDigest(digest)
	e.archive.upsertDigest(digest, name)

	var nearest archiveEntry
	var nearestDistance int
	var nearestFound bool
	if hashed {
		nearest, nearestDistance, nearestFound = e.archive.nearest(fp)
		e.archive.insert(name, fp)
	}
	archiveSize := e.archive.size()
	e.mu.Unlock()

	var digestFinding *LayerFinding
	if digestHit {
		zero := 0
		digestFinding = &LayerFinding{
			MatchedFile:       &prevSubmitter,
			HammingDistance:   &zero,
			SimilarityPercent: 100,
			FraudRiskScore:    ExactDuplicateRisk,
			Classification:    ExactDuplicateLabel,
			FraudDetected:     true,
		}
	}

	var fingerprintFinding *LayerFinding
	if hashed {
		if nearestFound {
			risk, label := ClassifyDistance(nearestDistance)
			d := nearestDistance
			matched := nearest.name
			fingerprintFinding = &LayerFinding{
				MatchedFile:       &matched,
				HammingDistance:   &d,
				SimilarityPercent: Similarity(d),
				FraudRiskScore:    risk,
				Classification:    label,
				FraudDetected:     d <= e.threshold,
			}
		} else {
			fingerprintFinding = &LayerFinding{
				FraudRiskScore: 5,
				Classification: FirstUploadLabel,
			}
		}
	}

	method := e.resolveMethod(backend, hashed, digestHit)
	best := mergeFindings(digestFinding, fingerprintFinding)
	if best == nil {
		// Rendering failed and the digest archive had never seen these bytes.
		return FindingReport{
			UploadedFile:   name,
			FraudRiskScore: 10,
			Classification: "Analysis Incomplete — Could Not Render Document",
			ArchiveSize:    archiveSize,
			Method:         method,
		}
	}

	return FindingReport{
		UploadedFile:      name,
		MatchedFile:       best.MatchedFile,
		HammingDistance:   best.HammingDistance,
		SimilarityPercent: best.SimilarityPercent,
		FraudRiskScore:    best.FraudRiskScore,
		Classification:    best.Classification,
		FraudDetected:     best.FraudDetected,
		ArchiveSize:       archiveSize,
		Method:            method,
		Layers: Layers{
			Digest:      digestFinding,
			Fingerprint: fingerprintFinding,
		},
	}
}

// AnalyzeFilePair compares two documents directly, without reading or writing
// the archive. Both must render; otherwise a *RenderError names the first
// input that could not be rasterized.
func (e *Engine) AnalyzeFilePair(ctx context.Context, pathA, pathB string) (ComparisonReport, error) {
	paths := [2]string{pathA, pathB}
	var fps [2]phash.Fingerprint

	g, gctx := errgroup.WithContext(ctx)
	for i := range paths {
		g.Go(func() error {
			raster, _, ok := e.renderer.Render(gctx, paths[i])
			if !ok {
				return &RenderError{File: filepath.Base(paths[i])}
			}
			fp, err := phash.FromImage(raster)
			if err != nil {
				return &RenderError{File: filepath.Base(paths[i]), Cause: err}
			}
			fps[i] = fp
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return ComparisonReport{}, err
	}

	distance := fps[0].Distance(fps[1])
	risk, label := ClassifyDistance(distance)
	return ComparisonReport{
		Hash1:             fps[0].String(),
		Hash2:             fps[1].String(),
		HammingDistance:   distance,
		SimilarityPercent: Similarity(distance),
		FraudRiskScore:    risk,
		Classification:    label,
		FraudDetected:     distance <= e.threshold,
	}, nil
}

// validationReport is the terminal finding for rejected input. Neither
// archive is mutated.
func (e *Engine) validationReport(name string, err error) FindingReport {
	reason := "rejected"
	if verr, ok := err.(*ValidationError); ok {
		reason = verr.Reason
	}
	return FindingReport{
		UploadedFile:   name,
		Classification: fmt.Sprintf("Validation Failed — %s", reason),
		ArchiveSize:    e.ArchiveSize(),
		Method:         MethodValidationError,
	}
}

// resolveMethod maps the analysis outcome onto the method enum. When the
// fingerprint layer ran, the method names the backend that produced the
// raster; otherwise it reflects how far the digest layer carried the call.
func (e *Engine) resolveMethod(backend string, hashed, digestHit bool) Method {
	if hashed {
		return Method(backend)
	}
	if digestHit {
		return MethodDigestOnly
	}
	return MethodFailed
}

// mergeFindings picks the layer finding with the strictly higher risk score.
// The digest finding wins ties: exact-byte evidence outranks perceptual
// similarity.
func mergeFindings(digest, fingerprint *LayerFinding) *LayerFinding {
	if digest == nil {
		return fingerprint
	}
	if fingerprint != nil && fingerprint.FraudRiskScore > digest.FraudRiskScore {
		return fingerprint
	}
	return digest
}
