package naming

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"livearchive/internal/services"
	"livearchive/internal/textutil"
)

// Category is the program type a recording is archived as.
type Category int

const (
	Primary Category = iota
	Secondary
)

func (c Category) String() string {
	switch c {
	case Primary:
		return "primary"
	case Secondary:
		return "secondary"
	default:
		return "unknown"
	}
}

// Titles configures the display title and sidecar tag of each category.
type Titles struct {
	PrimaryTitle   string
	PrimaryTag     string
	SecondaryTitle string
	SecondaryTag   string
}

type categoryInfo struct {
	title string
	tag   string
}

// Slot is a resolved archive destination.
type Slot struct {
	Dir      string
	Base     string
	Ext      string
	Category Category
	// Suffix is the disambiguation number; zero means none.
	Suffix int
	// DisplayTitle is the human title with a non-padded day.
	DisplayTitle string
	Tag          string
	Captured     CaptureTime
}

// Path is the archived video path.
func (s Slot) Path() string {
	return filepath.Join(s.Dir, s.Base+"."+s.Ext)
}

// SidecarPath is the metadata document path next to the video.
func (s Slot) SidecarPath() string {
	return filepath.Join(s.Dir, s.Base+".nfo")
}

// Resolver maps capture times to archive slots under a root directory.
type Resolver struct {
	root       string
	ext        string
	categories map[Category]categoryInfo
	stat       func(string) (os.FileInfo, error)
}

// NewResolver builds a resolver rooted at root producing files with ext.
func NewResolver(root, ext string, titles Titles) (*Resolver, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, errors.New("naming: output root is required")
	}
	ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
	if ext == "" {
		return nil, errors.New("naming: extension is required")
	}
	primary := textutil.SanitizeFileName(titles.PrimaryTitle)
	secondary := textutil.SanitizeFileName(titles.SecondaryTitle)
	if primary == "" || secondary == "" {
		return nil, errors.New("naming: category titles are required")
	}
	if primary == secondary {
		return nil, fmt.Errorf("naming: category titles must differ (both %q)", primary)
	}
	return &Resolver{
		root: root,
		ext:  ext,
		categories: map[Category]categoryInfo{
			Primary:   {title: primary, tag: tagOr(titles.PrimaryTag, primary)},
			Secondary: {title: secondary, tag: tagOr(titles.SecondaryTag, secondary)},
		},
		stat: os.Stat,
	}, nil
}

func tagOr(tag, fallback string) string {
	if tag = strings.TrimSpace(tag); tag != "" {
		return tag
	}
	return fallback
}

// Root returns the archive root.
func (r *Resolver) Root() string { return r.root }

// Extension returns the archive file extension without a dot.
func (r *Resolver) Extension() string { return r.ext }

// MonthDir returns <root>/<YYYY>/<MM>-<MonthName> for the capture time.
func (r *Resolver) MonthDir(ct CaptureTime) string {
	return filepath.Join(r.root, ct.Year(), ct.MonthDir())
}

// Resolve chooses the category and file name for a recording. The primary
// slot wins when free, then the plain secondary slot, then secondary slots
// with the smallest free " (N)" suffix. The returned path did not exist when
// checked; callers must process recordings sequentially for that to hold.
func (r *Resolver) Resolve(ct CaptureTime) (Slot, error) {
	for _, candidate := range []Slot{r.slot(ct, Primary, 0), r.slot(ct, Secondary, 0)} {
		exists, err := r.exists(candidate.Path())
		if err != nil {
			return Slot{}, err
		}
		if !exists {
			return candidate, nil
		}
	}
	for n := 1; ; n++ {
		candidate := r.slot(ct, Secondary, n)
		exists, err := r.exists(candidate.Path())
		if err != nil {
			return Slot{}, err
		}
		if !exists {
			return candidate, nil
		}
	}
}

// Archived reports whether either category already has an output for the
// capture date. The startup scan uses it to skip recordings handled by a
// previous run.
func (r *Resolver) Archived(ct CaptureTime) (bool, error) {
	for _, category := range []Category{Primary, Secondary} {
		exists, err := r.exists(r.slot(ct, category, 0).Path())
		if err != nil || exists {
			return exists, err
		}
	}
	return false, nil
}

func (r *Resolver) slot(ct CaptureTime, category Category, suffix int) Slot {
	info := r.categories[category]
	base := info.title + " | " + ct.FileDate()
	display := info.title + " | " + ct.DisplayDate()
	if suffix > 0 {
		tail := " (" + strconv.Itoa(suffix) + ")"
		base += tail
		display += tail
	}
	return Slot{
		Dir:          r.MonthDir(ct),
		Base:         base,
		Ext:          r.ext,
		Category:     category,
		Suffix:       suffix,
		DisplayTitle: display,
		Tag:          info.tag,
		Captured:     ct,
	}
}

func (r *Resolver) exists(path string) (bool, error) {
	_, err := r.stat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	default:
		return false, services.Wrap(services.ErrIO, "naming", "check existing output", path, err)
	}
}
