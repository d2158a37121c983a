package treediff

// Verdict is the outcome of classifying a pair.
type Verdict int

const (
	Readable Verdict = iota
	Unreadable
)

// String returns the verdict name.
func (v Verdict) String() string {
	if v == Readable {
		return "readable"
	}
	return "unreadable"
}

// PairJudge classifies a single pair.
type PairJudge interface {
	ClassifyPair(p ChangePair) (Verdict, error)
}

// Classifier judges pairs whose old side lives in the object store and whose
// new side is read through newSrc (the store again, or the working tree).
type Classifier struct {
	readability *Readability
	oldSrc      Resolver
	newSrc      Resolver
}

// NewClassifier creates a Classifier. A nil readability uses DefaultReadability.
func NewClassifier(readability *Readability, oldSrc, newSrc Resolver) *Classifier {
	if readability == nil {
		readability = DefaultReadability()
	}
	return &Classifier{readability: readability, oldSrc: oldSrc, newSrc: newSrc}
}

// ClassifyPair returns Readable only when both sides are text. One binary
// side is enough to make the whole pair Unreadable; the old side is judged
// first and the new side is not opened when it already decided the pair.
func (c *Classifier) ClassifyPair(p ChangePair) (Verdict, error) {
	ok, err := c.readability.IsReadable(p.Old, c.oldSrc)
	if err != nil {
		return Unreadable, err
	}
	if !ok {
		return Unreadable, nil
	}
	ok, err = c.readability.IsReadable(p.New, c.newSrc)
	if err != nil {
		return Unreadable, err
	}
	if !ok {
		return Unreadable, nil
	}
	return Readable, nil
}

// IsReadable reports whether the pair can be diffed as text.
func (c *Classifier) IsReadable(p ChangePair) (bool, error) {
	v, err := c.ClassifyPair(p)
	return v == Readable && err == nil, err
}

// IsUnreadable reports whether the pair must get a binary placeholder.
func (c *Classifier) IsUnreadable(p ChangePair) (bool, error) {
	v, err := c.ClassifyPair(p)
	if err != nil {
		return false, err
	}
	return v == Unreadable, nil
}

// Classify partitions pairs into readable and unreadable, keeping the input
// order within each bucket.
func Classify(pairs []ChangePair, judge PairJudge) (readable, unreadable []ChangePair, err error) {
	readIdx, unreadIdx, err := partition(pairs, judge)
	if err != nil {
		return nil, nil, err
	}
	return pick(pairs, readIdx), pick(pairs, unreadIdx), nil
}

// partition returns the input indexes of each bucket.
func partition(pairs []ChangePair, judge PairJudge) (readable, unreadable []int, err error) {
	readable = make([]int, 0, len(pairs))
	for i, p := range pairs {
		v, err := judge.ClassifyPair(p)
		if err != nil {
			return nil, nil, err
		}
		if v == Readable {
			readable = append(readable, i)
		} else {
			unreadable = append(unreadable, i)
		}
	}
	return readable, unreadable, nil
}

func pick(pairs []ChangePair, idx []int) []ChangePair {
	out := make([]ChangePair, len(idx))
	for i, j := range idx {
		out[i] = pairs[j]
	}
	return out
}
