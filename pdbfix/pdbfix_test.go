package pdbfix

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/TuftsBCB/seq"
	"github.com/stretchr/testify/require"

	"github.com/BurntSushi/ensembler/align"
	"github.com/BurntSushi/ensembler/project"
)

const (
	kc1dResolved = "LRVGNRYRLGRKIGDIYLGTDIAAGEEVAIKLECPQLHIESKIYKMMQGGVGIPTIRW" +
		"CGAEGDYNVMVMELLGPSLEDLFNFCSRKFSLKTVLLLADQMISRIEYIHSKNFIHRDVKPDNFLM" +
		"GLGKKGNLVYIIDFGLAKKYRDAQHIPYRENKNLTGTARYASINTHLGIEQSRRDDLESLGYVLMY" +
		"FNLGSLPWQGLKAATKRQKYERISEKKMSTPIEVLCKGYPSEFATYLNFCRSLRFDDKPDYSYLRQ" +
		"LFRNLFHRQGFSYDYVFDWNML"
	kc1dFull = "LRVGNRYRLGRKIGSGSFGDIYLGTDIAAGEEVAIKLECVKTKHPQLHIESKIYKMMQGGVGIPT" +
		"IRWCGAEGDYNVMVMELLGPSLEDLFNFCSRKFSLKTVLLLADQMISRIEYIHSKNFIHRDVKPDN" +
		"FLMGLGKKGNLVYIIDFGLAKKYRDARTHQHIPYRENKNLTGTARYASINTHLGIEQSRRDDLESL" +
		"GYVLMYFNLGSLPWQGLKAATKRQKYERISEKKMSTPIEVLCKGYPSEFATYLNFCRSLRFDDKPD" +
		"YSYLRQLFRNLFHRQGFSYDYVFDWNMLKFGASRAADDAERERRDREERLRH"

	abl1Resolved = "ITMKHKLGGGQYGEVYEGVWKKYSLTVAVKTLEVEEFLKEAAVMKEIKHPNLVQLLGVCTRE" +
		"PPFYIITEFMTYGNLLDYLRECNRQEVNAVVLLYMATQISSAMEYLEKKNFIHRDLAARNCLVGEN" +
		"HLVKVADFGLSTYTAHAGAKFPIKWTAPESLAYNKFSIKSDVWAFGVLLWEIATYGMSPYPGIDLS" +
		"QVYELLEKDYRMERPEGCPEKVYELMRACWQWNPSDRPSFAEIHQAFETMF"
	abl1Full = "ITMKHKLGGGQYGEVYEGVWKKYSLTVAVKTLKEDTMEVEEFLKEAAVMKEIKHPNLVQLLGVCT" +
		"REPPFYIITEFMTYGNLLDYLRECNRQEVNAVVLLYMATQISSAMEYLEKKNFIHRDLAARNCLVG" +
		"ENHLVKVADFGLSRLMTGDTYTAHAGAKFPIKWTAPESLAYNKFSIKSDVWAFGVLLWEIATYGMS" +
		"PYPGIDLSQVYELLEKDYRMERPEGCPEKVYELMRACWQWNPSDRPSFAEIHQAFETMFQESSISD" +
		"EVEKELGKQ"

	uysResolved = "RVGNRYRLGRKIGSDIYLGTDIAAGEEVAIKLECVKPQLHIESKIYKMMQGGVGIPTIRWC" +
		"GAEGDYNVMVMELLGPSLEDLFNFCSRKFSLKTVLLLADQMISRIEYIHSKNFIHRDVKPDNFLMG" +
		"LGKKGNLVYIIDFGLAKKYRDARTHQHIPYRENKNLTGTARYASINTHLGIEQSRRDDLESLGYVL" +
		"MYFNLGSLPWQGLKAATKRQKYERISEKKMSTPIEVLCKGYPSEFATYLNFCRSLRFDDKPDYSYL" +
		"RQLFRNLFHRQGFSYDYVFDWNMLK"
	uysFull = "MELRVGNRYRLGRKIGSGSFGDIYLGTDIAAGEEVAIKLECVKTKHPQLHIESKIYKMMQGGVGI" +
		"PTIRWCGAEGDYNVMVMELLGPSLEDLFNFCSRKFSLKTVLLLADQMISRIEYIHSKNFIHRDVKP" +
		"DNFLMGLGKKGNLVYIIDFGLAKKYRDARTHQHIPYRENKNLTGTARYASINTHLGIEQSRRDDLE" +
		"SLGYVLMYFNLGSLPWQGLKAATKRQKYERISEKKMSTPIEVLCKGYPSEFATYLNFCRSLRFDDK" +
		"PDYSYLRQLFRNLFHRQGFSYDYVFDWNMLK"
)

var (
	kc1d = NewTemplate("KC1D_HUMAN_D0_4KB8_D", "D", kc1dResolved, kc1dFull)
	abl1 = NewTemplate("ABL1_HUMAN_D0_2E2B_B", "B", abl1Resolved, abl1Full)
	uys  = NewTemplate("KC1D_HUMAN_D0_3UYS_D", "D", uysResolved, uysFull)
)

// caPosition places residue i on a helix-like curve so that every residue
// has distinct coordinates.
func caPosition(i int) (float64, float64, float64) {
	a := float64(i) * 100 * math.Pi / 180
	return 2.3 * math.Cos(a), 2.3 * math.Sin(a), 1.5 * float64(i)
}

// writeTrace writes an alpha-carbon trace to path. The i-th residue is
// numbered i+1 and placed at caPosition(positions[i]), with z scaled by
// stretch.
func writeTrace(path, chain string, names []string, positions []int,
	stretch float64) error {

	var buf bytes.Buffer
	for i, name := range names {
		x, y, z := caPosition(positions[i])
		fmt.Fprintf(&buf,
			"ATOM  %5d  CA  %3s %s%4d    %8.3f%8.3f%8.3f  1.00 20.00           C  \n",
			i+1, name, chain, i+1, x, y, z*stretch)
	}
	fmt.Fprintln(&buf, "END")
	if err := os.MkdirAll(filepath.Dir(path), 0777); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0666)
}

// writeResolved writes the structure of the resolved residues of tmpl, placing
// each one where it sits in the full sequence.
func writeResolved(t *testing.T, layout project.Layout, tmpl Template) {
	m, err := align.Gapped(tmpl.Resolved, tmpl.Full)
	require.NoError(t, err)
	names, err := ResidueNames(tmpl.Resolved, nil)
	require.NoError(t, err)
	require.NoError(t, writeTrace(layout.ResolvedStructure(tmpl.ID),
		tmpl.ChainID, names, m, 1))
}

// fakeCompleter stands in for a structure completion program. It writes the
// resolved residues plus every run of missing residues it was asked to
// rebuild.
type fakeCompleter struct {
	templates map[string]Template

	// stretch scales z coordinates of the output; 1 leaves resolved
	// residues where they were.
	stretch float64

	// dropLast leaves the last residue out of the output.
	dropLast bool

	// fail makes Complete fail for these templates.
	fail map[string]bool

	mu    sync.Mutex
	calls []Completion
}

func newFakeCompleter(ts ...Template) *fakeCompleter {
	fc := &fakeCompleter{
		templates: make(map[string]Template),
		stretch:   1,
		fail:      make(map[string]bool),
	}
	for _, tmpl := range ts {
		fc.templates[tmpl.ID] = tmpl
	}
	return fc
}

func (fc *fakeCompleter) Complete(c Completion) error {
	fc.mu.Lock()
	fc.calls = append(fc.calls, c)
	fc.mu.Unlock()

	if fc.fail[c.TemplateID] {
		return errors.New("simulated crash")
	}
	if _, err := os.Stat(c.Input); err != nil {
		return err
	}

	tmpl := fc.templates[c.TemplateID]
	m, err := align.Gapped(tmpl.Resolved, tmpl.Full)
	if err != nil {
		return err
	}
	keep := make([]bool, len(tmpl.Full))
	for _, i := range m {
		keep[i] = true
	}
	for _, g := range m.Gaps(len(tmpl.Full)) {
		if _, ok := c.Missing[SpanKey{0, g.Index}]; ok {
			for i := g.Start; i < g.End; i++ {
				keep[i] = true
			}
		}
	}

	var names []string
	var positions []int
	for i, k := range keep {
		if k {
			names = append(names, c.Sequence[i])
			positions = append(positions, i)
		}
	}
	if fc.dropLast {
		names, positions = names[:len(names)-1], positions[:len(positions)-1]
	}
	return writeTrace(c.Output, c.ChainID, names, positions, fc.stretch)
}

func newProject(t *testing.T, ts ...Template) project.Layout {
	layout := project.Layout(t.TempDir())
	require.NoError(t, layout.Init())
	for _, tmpl := range ts {
		writeResolved(t, layout, tmpl)
	}
	return layout
}

func TestDetectMissingKC1D(t *testing.T) {
	missing, err := DetectMissing(kc1d)
	require.NoError(t, err)

	require.NotContains(t, missing, SpanKey{0, 278})
	require.Equal(t, MissingResidues{
		{0, 14}:  {"SER", "GLY", "SER", "PHE", "GLY"},
		{0, 34}:  {"VAL", "LYS", "THR", "LYS", "HIS"},
		{0, 147}: {"ARG", "THR", "HIS"},
	}, missing)
	require.Equal(t, []SpanKey{{0, 14}, {0, 34}, {0, 147}}, missing.Spans())
	require.Equal(t, 13, missing.Count())
}

func TestDetectMissingABL1(t *testing.T) {
	missing, err := DetectMissing(abl1)
	require.NoError(t, err)

	require.NotContains(t, missing, SpanKey{0, 271})
	require.NotContains(t, missing, SpanKey{0, 245})
	require.Equal(t, MissingResidues{
		{0, 32}:  {"LYS", "GLU", "ASP", "THR", "MET"},
		{0, 139}: {"ARG", "LEU", "MET", "THR", "GLY", "ASP"},
	}, missing)
}

func TestDetectGapsTermini(t *testing.T) {
	gaps, err := DetectGaps(uys, nil)
	require.NoError(t, err)
	require.Equal(t, []Gap{
		{Index: 0, FullStart: 0, Residues: []string{"MET", "GLU", "LEU"},
			Terminal: true},
		{Index: 14, FullStart: 17, Residues: []string{"GLY", "SER", "PHE", "GLY"}},
		{Index: 36, FullStart: 43, Residues: []string{"THR", "LYS", "HIS"}},
	}, gaps)

	missing, err := DetectMissing(uys)
	require.NoError(t, err)
	require.Equal(t, []SpanKey{{0, 14}, {0, 36}}, missing.Spans())
}

func TestDetectMissingNoGaps(t *testing.T) {
	missing, err := DetectMissing(NewTemplate("X_A", "A", "ACDEF", "ACDEF"))
	require.NoError(t, err)
	require.Empty(t, missing)

	// Only termini are missing.
	missing, err = DetectMissing(NewTemplate("X_A", "A", "CDE", "ACDEF"))
	require.NoError(t, err)
	require.Empty(t, missing)
}

func TestDetectMissingAlignmentError(t *testing.T) {
	_, err := DetectMissing(NewTemplate("X_A", "A", "ACW", "ACDEF"))
	require.Error(t, err)

	var aerr *AlignmentError
	require.True(t, errors.As(err, &aerr))
	require.Equal(t, "X_A", aerr.TemplateID)

	var inner *align.Error
	require.True(t, errors.As(err, &inner))
	require.Equal(t, 2, inner.Index)
}

func TestResidueNames(t *testing.T) {
	names, err := ResidueNames([]seq.Residue("MKZ"), map[byte]string{'Z': "GLX"})
	require.NoError(t, err)
	require.Equal(t, []string{"MET", "LYS", "GLX"}, names)

	_, err = ResidueNames([]seq.Residue("MKZ"), nil)
	require.Error(t, err)
}

func TestRepair(t *testing.T) {
	layout := newProject(t, kc1d)
	fc := newFakeCompleter(kc1d)
	r := Repairer{Layout: layout, Completer: fc, MaxDrift: 0.5}

	missing, err := r.Repair(kc1d)
	require.NoError(t, err)
	require.Equal(t, []SpanKey{{0, 14}, {0, 34}, {0, 147}}, missing.Spans())

	require.Len(t, fc.calls, 1)
	c := fc.calls[0]
	require.Equal(t, layout.ResolvedStructure(kc1d.ID), c.Input)
	require.Equal(t, layout.RepairedStructure(kc1d.ID), c.Output)
	require.Equal(t, "D", c.ChainID)
	require.Len(t, c.Sequence, len(kc1dFull))
	require.Equal(t, missing, c.Missing)
	require.True(t, project.Exists(c.Output))
}

func TestRepairKeepTermini(t *testing.T) {
	layout := newProject(t, uys)
	r := Repairer{
		Layout:      layout,
		Completer:   newFakeCompleter(uys),
		KeepTermini: true,
		MaxDrift:    0.5,
	}

	missing, err := r.Repair(uys)
	require.NoError(t, err)
	require.Equal(t, []SpanKey{{0, 0}, {0, 14}, {0, 36}}, missing.Spans())
	require.Equal(t, []string{"MET", "GLU", "LEU"}, missing[SpanKey{0, 0}])
}

func TestRepairInputNotFound(t *testing.T) {
	layout := newProject(t)
	fc := newFakeCompleter(abl1)
	r := Repairer{Layout: layout, Completer: fc}

	_, err := r.Repair(abl1)
	require.Error(t, err)

	var nferr *InputNotFoundError
	require.True(t, errors.As(err, &nferr))
	require.Equal(t, abl1.ID, nferr.TemplateID)
	require.True(t, os.IsNotExist(nferr.Err))
	require.Empty(t, fc.calls)
}

func TestRepairCompleterFails(t *testing.T) {
	layout := newProject(t, abl1)
	fc := newFakeCompleter(abl1)
	fc.fail[abl1.ID] = true
	r := Repairer{Layout: layout, Completer: fc}

	_, err := r.Repair(abl1)
	var rerr *StructureRepairError
	require.True(t, errors.As(err, &rerr))
	require.Contains(t, err.Error(), "simulated crash")
}

func TestRepairDrift(t *testing.T) {
	layout := newProject(t, abl1)
	fc := newFakeCompleter(abl1)
	fc.stretch = 1.5
	r := Repairer{Layout: layout, Completer: fc, MaxDrift: 0.5}

	_, err := r.Repair(abl1)
	var rerr *StructureRepairError
	require.True(t, errors.As(err, &rerr))
	require.Contains(t, err.Error(), "moved")

	// Without a drift limit, nothing is checked.
	r.MaxDrift = 0
	_, err = r.Repair(abl1)
	require.NoError(t, err)
}

func TestRepairWrongResidueCount(t *testing.T) {
	layout := newProject(t, abl1)
	fc := newFakeCompleter(abl1)
	fc.dropLast = true
	r := Repairer{Layout: layout, Completer: fc, MaxDrift: 0.5}

	_, err := r.Repair(abl1)
	var rerr *StructureRepairError
	require.True(t, errors.As(err, &rerr))
	require.Contains(t, err.Error(), "residues in chain B")
}

func TestRepairAll(t *testing.T) {
	for _, workers := range []int{0, 4} {
		bad := NewTemplate("BAD_HUMAN_D0_1ABC_A", "A", "ACW", "ACDEF")
		missingInput := NewTemplate("NONE_HUMAN_D0_2ABC_A", "A", "AC", "ADC")
		ts := []Template{kc1d, bad, abl1, missingInput, uys}

		layout := newProject(t, kc1d, abl1, uys)
		fc := newFakeCompleter(ts...)
		fc.fail[uys.ID] = true

		var logged []string
		done := make(map[string]error)
		var mu sync.Mutex
		r := Repairer{
			Layout:    layout,
			Completer: fc,
			Workers:   workers,
			Logf: func(format string, v ...interface{}) {
				mu.Lock()
				defer mu.Unlock()
				logged = append(logged, fmt.Sprintf(format, v...))
			},
			Done: func(res Result) {
				mu.Lock()
				defer mu.Unlock()
				done[res.Template.ID] = res.Err
			},
		}
		batch := r.RepairAll(ts)
		require.Len(t, done, len(ts))
		for _, res := range batch.Results {
			require.Equal(t, res.Err, done[res.Template.ID])
		}

		require.NotEmpty(t, batch.RunID)
		require.Len(t, batch.Results, len(ts))
		for i, res := range batch.Results {
			require.Equal(t, ts[i].ID, res.Template.ID)
		}
		require.Equal(t, 2, batch.Succeeded())

		failed := batch.Failed()
		require.Len(t, failed, 3)
		var aerr *AlignmentError
		require.True(t, errors.As(batch.Results[1].Err, &aerr))
		var nferr *InputNotFoundError
		require.True(t, errors.As(batch.Results[3].Err, &nferr))
		var rerr *StructureRepairError
		require.True(t, errors.As(batch.Results[4].Err, &rerr))

		all := batch.Missing()
		require.Len(t, all, 2)
		require.Equal(t, []SpanKey{{0, 32}, {0, 139}}, all[abl1.ID].Spans())
		require.Equal(t, []SpanKey{{0, 14}, {0, 34}, {0, 147}},
			all[kc1d.ID].Spans())
		require.NotEmpty(t, logged)
	}
}

func TestRepairAllRunIDs(t *testing.T) {
	r := Repairer{Layout: newProject(t), Completer: newFakeCompleter()}
	b1, b2 := r.RepairAll(nil), r.RepairAll(nil)
	require.NotEqual(t, b1.RunID, b2.RunID)
	require.Empty(t, b1.Results)
}
