package mask

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/ini.v1"

	"github.com/banshee-data/wafermap/internal/centers"
	"github.com/banshee-data/wafermap/internal/fsutil"
	"github.com/banshee-data/wafermap/internal/mapstring"
	"github.com/banshee-data/wafermap/internal/monitoring"
)

// DefaultExtension is the mask file extension.
const DefaultExtension = ".ini"

// Mask files are read with case-sensitive keys ("Die X" and "die x" are
// different keys), with ';' kept in values because it separates map
// entries, and with surrounding quotes preserved so map strings and the
// centre key reach their decoders unchanged.
var loadOptions = ini.LoadOptions{
	Insensitive:             false,
	IgnoreInlineComment:     true,
	PreserveSurroundedQuote: true,
}

// Options configures a Loader. Zero fields take defaults.
type Options struct {
	FS        fsutil.FileSystem // default OSFileSystem
	Extension string            // default ".ini"
	Centers   *centers.Registry // default centers.Default()
	Logf      monitoring.Logf
}

// Loader reads mask files from one directory.
type Loader struct {
	fs      fsutil.FileSystem
	dir     string
	ext     string
	centers *centers.Registry
	logf    monitoring.Logf
}

// NewLoader returns a Loader for the masks in dir.
func NewLoader(dir string, opts Options) *Loader {
	l := &Loader{
		fs:      opts.FS,
		dir:     dir,
		ext:     opts.Extension,
		centers: opts.Centers,
		logf:    opts.Logf.OrDiscard(),
	}
	if l.fs == nil {
		l.fs = fsutil.OSFileSystem{}
	}
	if l.ext == "" {
		l.ext = DefaultExtension
	}
	if l.centers == nil {
		l.centers = centers.Default()
	}
	return l
}

// Dir returns the mask directory.
func (l *Loader) Dir() string { return l.dir }

// Path returns the file path of the named mask.
func (l *Loader) Path(name string) string {
	return filepath.Join(l.dir, name+l.ext)
}

// Stat returns file info for the named mask's file.
func (l *Loader) Stat(name string) (fs.FileInfo, error) {
	path := l.Path(name)
	info, err := l.fs.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &FileNotFoundError{Path: path}
	}
	return info, err
}

// List returns the names of the masks in the directory, sorted.
func (l *Loader) List() ([]string, error) {
	entries, err := l.fs.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("list masks in %s: %w", l.dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != l.ext {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), l.ext))
	}
	sort.Strings(names)
	return names, nil
}

// Load reads and decodes the named mask. No partial Mask is returned on
// error.
func (l *Loader) Load(name string) (*Mask, error) {
	path := l.Path(name)

	data, err := l.fs.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &FileNotFoundError{Path: path}
		}
		return nil, fmt.Errorf("read mask file: %w", err)
	}

	f, err := ini.LoadSources(loadOptions, data)
	if err != nil {
		return nil, fmt.Errorf("parse mask file %s: %w", path, err)
	}

	info, err := l.readInfo(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	size, sec, err := selectSize(f, path)
	if err != nil {
		return nil, err
	}

	layout, maps, err := readMaps(sec)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	devices, err := readDevices(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	m := &Mask{
		Name:    name,
		Path:    path,
		Info:    info,
		Size:    size,
		Layout:  layout,
		Maps:    maps,
		Devices: devices,
	}
	l.logf("loaded mask %s: %s section, center %v, %d maps, %d devices",
		name, size.Section, info.Center, len(maps), len(devices))
	return m, nil
}

func (l *Loader) readInfo(f *ini.File) (Info, error) {
	sec, err := f.GetSection(SectionMask)
	if err != nil {
		return Info{}, &MissingFieldError{Section: SectionMask}
	}

	r := fieldReader{sec: sec}
	info := Info{
		DieX:       r.float(KeyDieX),
		DieY:       r.float(KeyDieY),
		Flat:       r.int(KeyFlat),
		CenterKey:  r.string(KeyCenter),
		Properties: sec.KeysHash(),
	}
	if r.err != nil {
		return Info{}, r.err
	}

	info.Center, err = l.centers.Resolve(info.CenterKey)
	if err != nil {
		return Info{}, err
	}
	return info, nil
}

// ProbeResult is the outcome of looking for one physical size section.
type ProbeResult struct {
	Size PhysicalSize
	Err  error // nil when the section was found

	section *ini.Section
}

// Found reports whether the probed section exists.
func (p ProbeResult) Found() bool { return p.Err == nil }

func probe(f *ini.File, size PhysicalSize) ProbeResult {
	sec, err := f.GetSection(size.Section)
	return ProbeResult{Size: size, Err: err, section: sec}
}

// selectSize tries PhysicalSizes in order and returns the first present.
func selectSize(f *ini.File, path string) (PhysicalSize, *ini.Section, error) {
	tried := make([]ProbeResult, 0, len(PhysicalSizes))
	for _, size := range PhysicalSizes {
		res := probe(f, size)
		if res.Found() {
			return res.Size, res.section, nil
		}
		tried = append(tried, res)
	}
	return PhysicalSize{}, nil, &NoPhysicalSizeError{Path: path, Tried: tried}
}

func readMaps(sec *ini.Section) (Layout, map[string][]mapstring.Coord, error) {
	r := fieldReader{sec: sec}
	layout := Layout{
		Rows:     r.int(KeyRows),
		Cols:     r.int(KeyCols),
		HomeRow:  r.int(KeyHomeRow),
		HomeCol:  r.int(KeyHomeCol),
		StartRow: r.int(KeyStartRow),
		StartCol: r.int(KeyStartCol),
	}
	if r.err != nil {
		return Layout{}, nil, r.err
	}

	skip := make(map[string]bool, len(layoutKeys))
	for _, k := range layoutKeys {
		skip[k] = true
	}

	maps := make(map[string][]mapstring.Coord)
	for _, key := range sec.Keys() {
		if skip[key.Name()] {
			continue
		}
		coords, err := mapstring.Decode(key.String(), mapstring.Bounds{})
		if err != nil {
			return Layout{}, nil, fmt.Errorf("map %q in section [%s]: %w", key.Name(), sec.Name(), err)
		}
		maps[key.Name()] = coords
	}
	return layout, maps, nil
}

func readDevices(f *ini.File) (map[string]string, error) {
	sec, err := f.GetSection(SectionDevices)
	if err != nil {
		return nil, &MissingFieldError{Section: SectionDevices}
	}
	return sec.KeysHash(), nil
}

// fieldReader reads required values from a section and keeps the first
// error, so a record can be filled field by field and checked once.
type fieldReader struct {
	sec *ini.Section
	err error
}

func (r *fieldReader) raw(key string) (string, bool) {
	if r.err != nil {
		return "", false
	}
	if !r.sec.HasKey(key) {
		r.err = &MissingFieldError{Section: r.sec.Name(), Field: key}
		return "", false
	}
	return r.sec.Key(key).String(), true
}

func (r *fieldReader) string(key string) string {
	v, _ := r.raw(key)
	return v
}

func (r *fieldReader) float(key string) float64 {
	v, ok := r.raw(key)
	if !ok {
		return 0
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		r.err = &InvalidFieldError{Section: r.sec.Name(), Field: key, Value: v, Err: err}
		return 0
	}
	return f
}

func (r *fieldReader) int(key string) int {
	v, ok := r.raw(key)
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.err = &InvalidFieldError{Section: r.sec.Name(), Field: key, Value: v, Err: err}
		return 0
	}
	return n
}
