package treediff

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"
	"go.uber.org/zap"

	"github.com/masmgr/treediff-go/internal/git"
)

// Options configures a Dispatcher.
type Options struct {
	Renderer    TextDiffRenderer
	Readability *Readability
	// PreserveOrder returns records in change order instead of readable
	// records first and binary records after.
	PreserveOrder bool
	Logger        *zap.Logger
}

// Dispatcher routes each pair to the text or binary diff strategy.
type Dispatcher struct {
	renderer      TextDiffRenderer
	readability   *Readability
	preserveOrder bool
	logger        *zap.Logger
}

// NewDispatcher creates a Dispatcher. Zero options give a unified renderer
// with default context, content sniffing and no logging.
func NewDispatcher(opts Options) *Dispatcher {
	d := &Dispatcher{
		renderer:      opts.Renderer,
		readability:   opts.Readability,
		preserveOrder: opts.PreserveOrder,
		logger:        opts.Logger,
	}
	if d.renderer == nil {
		d.renderer = UnifiedRenderer{ContextLines: -1}
	}
	if d.readability == nil {
		d.readability = DefaultReadability()
	}
	if d.logger == nil {
		d.logger = zap.NewNop()
	}
	return d
}

// DiffPairs resolves both sides of every pair and renders a text record.
// The old side is resolved through oldSrc and the new side through newSrc.
func (d *Dispatcher) DiffPairs(pairs []ChangePair, oldSrc, newSrc Resolver) ([]DiffRecord, error) {
	records := make([]DiffRecord, 0, len(pairs))
	for _, p := range pairs {
		rec, err := d.diffPair(p, oldSrc, newSrc)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func (d *Dispatcher) diffPair(p ChangePair, oldSrc, newSrc Resolver) (DiffRecord, error) {
	oldRef, err := oldSrc.Resolve(p.Old)
	if err != nil {
		return DiffRecord{}, err
	}
	newRef, err := newSrc.Resolve(p.New)
	if err != nil {
		return DiffRecord{}, err
	}

	text, err := d.renderer.Render(sideOf(oldRef), sideOf(newRef))
	if err != nil {
		return DiffRecord{}, fmt.Errorf("render %s: %w", pairPath(p), err)
	}

	return DiffRecord{
		OldPath: oldRef.Path,
		NewPath: newRef.Path,
		Old:     oldRef.Descriptor(),
		New:     newRef.Descriptor(),
		Text:    text,
		Kind:    KindText,
	}, nil
}

// DiffBinaryPairs builds placeholder records without reading any content.
func (d *Dispatcher) DiffBinaryPairs(pairs []ChangePair) []DiffRecord {
	records := make([]DiffRecord, 0, len(pairs))
	for _, p := range pairs {
		records = append(records, DiffRecord{
			OldPath: p.Old.Path,
			NewPath: p.New.Path,
			Old:     p.Old.Descriptor(),
			New:     p.New.Descriptor(),
			Kind:    KindBinary,
		})
	}
	return records
}

// DiffChanges diffs changes whose both sides live in store.
func (d *Dispatcher) DiffChanges(store git.ObjectStore, changes []git.RawChange) ([]DiffRecord, error) {
	src := StoreResolver{Store: store}
	return d.dispatch(changes, src, src)
}

// DiffChangesWorking diffs changes whose new side lives in the working
// directory read through fs.
func (d *Dispatcher) DiffChangesWorking(store git.ObjectStore, fs git.Filesystem, changes []git.RawChange) ([]DiffRecord, error) {
	return d.dispatch(changes, StoreResolver{Store: store}, WorkingResolver{FS: fs})
}

// TreeDiff diffs two trees of store.
func (d *Dispatcher) TreeDiff(ctx context.Context, store git.ObjectStore, oldTree, newTree plumbing.Hash) ([]DiffRecord, error) {
	changes, err := store.TreeChanges(ctx, oldTree, newTree)
	if err != nil {
		return nil, err
	}
	return d.DiffChanges(store, changes)
}

func (d *Dispatcher) dispatch(changes []git.RawChange, oldSrc, newSrc Resolver) ([]DiffRecord, error) {
	pairs, err := ToPairs(changes)
	if err != nil {
		return nil, err
	}

	classifier := NewClassifier(d.readability, oldSrc, newSrc)
	readIdx, binIdx, err := partition(pairs, classifier)
	if err != nil {
		return nil, err
	}
	d.logger.Debug("classified changes",
		zap.Int("changes", len(pairs)),
		zap.Int("text", len(readIdx)),
		zap.Int("binary", len(binIdx)))

	text, err := d.DiffPairs(pick(pairs, readIdx), oldSrc, newSrc)
	if err != nil {
		return nil, err
	}
	records := append(text, d.DiffBinaryPairs(pick(pairs, binIdx))...)

	if d.preserveOrder {
		reorder(records, append(readIdx, binIdx...))
	}
	return records, nil
}

// reorder sorts records by the input index each one came from.
func reorder(records []DiffRecord, origin []int) {
	sort.Sort(byOrigin{records: records, origin: origin})
}

type byOrigin struct {
	records []DiffRecord
	origin  []int
}

func (b byOrigin) Len() int           { return len(b.records) }
func (b byOrigin) Less(i, j int) bool { return b.origin[i] < b.origin[j] }
func (b byOrigin) Swap(i, j int) {
	b.records[i], b.records[j] = b.records[j], b.records[i]
	b.origin[i], b.origin[j] = b.origin[j], b.origin[i]
}

func pairPath(p ChangePair) string {
	if p.New.Path != "" {
		return p.New.Path
	}
	return p.Old.Path
}

// DiffChanges diffs changes with a default Dispatcher.
func DiffChanges(store git.ObjectStore, changes []git.RawChange) ([]DiffRecord, error) {
	return NewDispatcher(Options{}).DiffChanges(store, changes)
}

// DiffChangesWorking diffs changes against the working directory with a
// default Dispatcher.
func DiffChangesWorking(store git.ObjectStore, fs git.Filesystem, changes []git.RawChange) ([]DiffRecord, error) {
	return NewDispatcher(Options{}).DiffChangesWorking(store, fs, changes)
}

// ClassicTreeDiff concatenates the text of every record, the way a single
// `git diff` would print them. Binary records contribute a one-line notice.
func ClassicTreeDiff(records []DiffRecord) string {
	var sb strings.Builder
	for _, r := range records {
		if r.Kind == KindBinary {
			fmt.Fprintf(&sb, "Binary files %s and %s differ\n", binaryName("a/", r.OldPath), binaryName("b/", r.NewPath))
			continue
		}
		sb.WriteString(r.Text)
	}
	return sb.String()
}

func binaryName(prefix, path string) string {
	if path == "" {
		return "/dev/null"
	}
	return prefix + path
}
