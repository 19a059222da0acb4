// Package career serves the physical-education career references: the
// majors and the careers they lead to, certificate details and per-career
// roadmaps. The references are optional; a catalog built from a directory
// without them is empty, not an error.
package career

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"sort"
	"strings"

	"github.com/okian/pecounsel/internal/domain/event"
)

// File names inside the career directory.
const (
	GuideFile       = "Guide.csv"
	CertificateFile = "Certificate.csv"
	RoadmapFile     = "loadmap.csv"
)

// Guide is one major→career row.
type Guide struct {
	Major          string   `json:"major"`
	Career         string   `json:"career"`
	Certificates   string   `json:"certificates"`
	Salary         string   `json:"salary"`
	Employers      string   `json:"employers"`
	Strategy       string   `json:"strategy,omitempty"`
	CertificateSet []string `json:"-"`
}

// Certificate holds the details of one certificate.
type Certificate struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Issuer      string `json:"issuer"`
	Eligibility string `json:"eligibility"`
	Subjects    string `json:"subjects"`
	Preparation string `json:"preparation"`
	Salary      string `json:"salary"`
	Validity    string `json:"validity"`
	Difficulty  string `json:"difficulty"`
	Employers   string `json:"employers"`
}

// Step is one stage of a career roadmap.
type Step struct {
	Career      string `json:"career"`
	Stage       string `json:"stage"`
	Preparation string `json:"preparation"`
	Duration    string `json:"duration"`
	Required    string `json:"required_certificates,omitempty"`
}

// CertificateMatch pairs a certificate named by a career with its details,
// when any certificate matched.
type CertificateMatch struct {
	Name   string       `json:"name"`
	Detail *Certificate `json:"detail,omitempty"`
}

// Detail is everything known about one career of one major.
type Detail struct {
	Guide        Guide              `json:"guide"`
	Certificates []CertificateMatch `json:"certificates"`
	Roadmap      []Step             `json:"roadmap"`
}

// Failure names a reference file that did not load.
type Failure struct {
	File  string `json:"file"`
	Error string `json:"error"`
}

// Catalog is an immutable, loaded set of career references.
type Catalog struct {
	guides       []Guide
	certificates []Certificate
	roadmap      []Step
	available    bool
}

// Load reads the references from fsys. Guide.csv and Certificate.csv are
// both needed for the catalog to be available; the roadmap is optional.
// Files that fail are returned as failures.
func Load(fsys fs.FS) (*Catalog, []Failure) {
	c := &Catalog{}
	var failures []Failure
	fail := func(name string, err error) {
		failures = append(failures, Failure{File: name, Error: err.Error()})
	}

	guideRows, gErr := readCSV(fsys, GuideFile)
	if gErr != nil {
		fail(GuideFile, gErr)
	}
	certRows, cErr := readCSV(fsys, CertificateFile)
	if cErr != nil {
		fail(CertificateFile, cErr)
	}
	stepRows, sErr := readCSV(fsys, RoadmapFile)
	if sErr != nil {
		fail(RoadmapFile, sErr)
	}
	if gErr != nil || cErr != nil {
		return c, failures
	}

	for _, r := range guideRows {
		g := Guide{
			Major:        r.get("학과"),
			Career:       r.get("진로"),
			Certificates: r.get("필요자격증"),
			Salary:       r.get("초봉/연봉"),
			Employers:    r.get("주요 취업처"),
			Strategy:     r.get("준비전략"),
		}
		if g.Major == "" || g.Career == "" {
			continue
		}
		g.CertificateSet = splitList(g.Certificates)
		c.guides = append(c.guides, g)
	}
	for _, r := range certRows {
		ct := Certificate{
			Name:        r.get("자격증명"),
			Category:    r.get("자격증 분류"),
			Issuer:      r.get("발급/관리기관"),
			Eligibility: r.get("응시자격"),
			Subjects:    r.get("시험과목"),
			Preparation: r.get("준비기간"),
			Salary:      r.get("연봉/처우"),
			Validity:    r.get("유효기간"),
			Difficulty:  r.get("난이도"),
			Employers:   r.get("주요 취업처"),
		}
		if ct.Name == "" {
			continue
		}
		c.certificates = append(c.certificates, ct)
	}
	for _, r := range stepRows {
		s := Step{
			Career:      r.get("진로목표"),
			Stage:       r.get("단계"),
			Preparation: r.get("구체적준비내용"),
			Duration:    r.get("예상기간"),
			Required:    r.get("필수자격증"),
		}
		if s.Career == "" {
			continue
		}
		c.roadmap = append(c.roadmap, s)
	}
	c.available = true
	return c, failures
}

// Available reports whether the guide and certificate references loaded.
func (c *Catalog) Available() bool { return c != nil && c.available }

// Majors returns the distinct majors, sorted.
func (c *Catalog) Majors() []string {
	if !c.Available() {
		return []string{}
	}
	seen := make(map[string]struct{})
	out := []string{}
	for _, g := range c.guides {
		if _, ok := seen[g.Major]; ok {
			continue
		}
		seen[g.Major] = struct{}{}
		out = append(out, g.Major)
	}
	sort.Strings(out)
	return out
}

// Careers returns one row per distinct career of major, sorted by career.
func (c *Catalog) Careers(major string) ([]Guide, error) {
	if !c.Available() {
		return nil, ErrUnavailable
	}
	seen := make(map[string]struct{})
	var out []Guide
	for _, g := range c.guides {
		if g.Major != major {
			continue
		}
		if _, ok := seen[g.Career]; ok {
			continue
		}
		seen[g.Career] = struct{}{}
		out = append(out, g)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: major %q", ErrNotFound, major)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Career < out[j].Career })
	return out, nil
}

// Career returns the first matching row of career within major, the details
// of every certificate it names, and its roadmap.
func (c *Catalog) Career(major, career string) (Detail, error) {
	if !c.Available() {
		return Detail{}, ErrUnavailable
	}
	for _, g := range c.guides {
		if g.Major != major || g.Career != career {
			continue
		}
		d := Detail{Guide: g, Certificates: []CertificateMatch{}, Roadmap: c.Roadmap(career)}
		for _, name := range g.CertificateSet {
			m := CertificateMatch{Name: name}
			if ct, ok := c.findCertificate(name); ok {
				m.Detail = &ct
			}
			d.Certificates = append(d.Certificates, m)
		}
		return d, nil
	}
	return Detail{}, fmt.Errorf("%w: career %q of %q", ErrNotFound, career, major)
}

// Roadmap returns the steps of career in file order.
func (c *Catalog) Roadmap(career string) []Step {
	out := []Step{}
	if c == nil {
		return out
	}
	for _, s := range c.roadmap {
		if s.Career == career {
			out = append(out, s)
		}
	}
	return out
}

// Certificates returns one entry per distinct certificate name, sorted.
func (c *Catalog) Certificates() []Certificate {
	if !c.Available() {
		return []Certificate{}
	}
	seen := make(map[string]struct{})
	out := []Certificate{}
	for _, ct := range c.certificates {
		if _, ok := seen[ct.Name]; ok {
			continue
		}
		seen[ct.Name] = struct{}{}
		out = append(out, ct)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Certificate returns the certificate named exactly name and every career
// whose certificate list mentions it.
func (c *Catalog) Certificate(name string) (Certificate, []Guide, error) {
	if !c.Available() {
		return Certificate{}, nil, ErrUnavailable
	}
	for _, ct := range c.certificates {
		if ct.Name != name {
			continue
		}
		careers := []Guide{}
		for _, g := range c.guides {
			if containsFold(g.Certificates, name) {
				careers = append(careers, g)
			}
		}
		return ct, careers, nil
	}
	return Certificate{}, nil, fmt.Errorf("%w: certificate %q", ErrNotFound, name)
}

// findCertificate returns the first certificate whose name contains name.
func (c *Catalog) findCertificate(name string) (Certificate, bool) {
	for _, ct := range c.certificates {
		if containsFold(ct.Name, name) {
			return ct, true
		}
	}
	return Certificate{}, false
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// row is one CSV record keyed by normalised header.
type row map[string]string

func (r row) get(header string) string {
	return strings.TrimSpace(r[event.NormalizeName(header)])
}

func readCSV(fsys fs.FS, name string) ([]row, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	rd := csv.NewReader(f)
	rd.FieldsPerRecord = -1
	rd.LazyQuotes = true

	header, err := rd.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrMalformed, name, err)
	}
	keys := make([]string, len(header))
	for i, h := range header {
		keys[i] = event.NormalizeName(strings.TrimPrefix(h, "\ufeff"))
	}

	var out []row
	for {
		rec, err := rd.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrMalformed, name, err)
		}
		r := make(row, len(keys))
		for i, v := range rec {
			if i < len(keys) {
				r[keys[i]] = v
			}
		}
		out = append(out, r)
	}
	return out, nil
}
