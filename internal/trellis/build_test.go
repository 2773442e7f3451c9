package trellis

import "testing"

func rate12K3Spec(blockBits int, terminate bool) Spec {
	return Spec{
		ConstraintLength: 3,
		Generators:       []int{7, 5}, // octal (7,5), the textbook K=3 rate-1/2 code
		BlockBits:        blockBits,
		Terminate:        terminate,
	}
}

func TestBuild_Shape(t *testing.T) {
	tbl, err := Build(rate12K3Spec(4, true))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if tbl.S() != 4 {
		t.Errorf("S = %d, want 4", tbl.S())
	}
	if tbl.I() != 2 {
		t.Errorf("I = %d, want 2", tbl.I())
	}
	if tbl.K() != 1 {
		t.Errorf("K = %d, want 1", tbl.K())
	}
	if tbl.N() != 2 {
		t.Errorf("N = %d, want 2", tbl.N())
	}
	if tbl.M() != 2 {
		t.Errorf("M = %d, want 2", tbl.M())
	}
	if tbl.BlockBits() != 4 {
		t.Errorf("BlockBits = %d, want 4", tbl.BlockBits())
	}
	if !tbl.Terminate() {
		t.Error("Terminate = false, want true")
	}
}

func TestBuild_BranchesAreBPSKValued(t *testing.T) {
	tbl, err := Build(rate12K3Spec(4, true))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for s := 0; s < tbl.S(); s++ {
		for q := 0; q < tbl.I(); q++ {
			to, expected := tbl.Branch(s, q)
			if to < 0 || to >= tbl.S() {
				t.Errorf("Branch(%d,%d).to = %d out of range", s, q, to)
			}
			if len(expected) != tbl.N() {
				t.Fatalf("Branch(%d,%d) expected vector length = %d, want %d", s, q, len(expected), tbl.N())
			}
			for _, e := range expected {
				if e != 1.0 && e != -1.0 {
					t.Errorf("Branch(%d,%d) expected[*] = %v, want +-1.0", s, q, e)
				}
			}
		}
	}
}

func TestBuild_RejectsBadSpec(t *testing.T) {
	cases := []Spec{
		{ConstraintLength: 1, Generators: []int{1}, BlockBits: 4},
		{ConstraintLength: 3, Generators: nil, BlockBits: 4},
		{ConstraintLength: 3, Generators: []int{9}, BlockBits: 4},
		{ConstraintLength: 3, Generators: []int{7, 5}, BlockBits: 0},
	}
	for i, spec := range cases {
		if _, err := Build(spec); err == nil {
			t.Errorf("case %d: Build succeeded, want error", i)
		}
	}
}

// TestBuild_MatchesSpecScenario checks the branch function against the
// hand-derived encoder trace for b=1011 from spec.md's concrete scenario 1:
// encoder output "11 10 00 01 01 11" over states 0 -> 2 -> 1 -> 2 -> 3 -> 1 -> 0.
func TestBuild_MatchesSpecScenario(t *testing.T) {
	tbl, err := Build(rate12K3Spec(4, true))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	type step struct {
		from, input, wantTo int
		wantG1, wantG2       float32
	}
	steps := []step{
		{0, 1, 2, 1, 1},
		{2, 0, 1, 1, -1},
		{1, 1, 2, -1, -1},
		{2, 1, 3, -1, 1},
		{3, 0, 1, -1, 1},
		{1, 0, 0, 1, 1},
	}
	for i, st := range steps {
		to, expected := tbl.Branch(st.from, st.input)
		if to != st.wantTo {
			t.Errorf("step %d: Branch(%d,%d).to = %d, want %d", i, st.from, st.input, to, st.wantTo)
		}
		if expected[0] != st.wantG1 || expected[1] != st.wantG2 {
			t.Errorf("step %d: Branch(%d,%d).expected = %v, want [%v %v]", i, st.from, st.input, expected, st.wantG1, st.wantG2)
		}
	}
}

func TestEncode_MatchesSpecScenarios(t *testing.T) {
	spec := rate12K3Spec(4, true)

	cases := []struct {
		name string
		bits []byte
		want []float32
	}{
		{
			name: "b=1011",
			bits: packLSB([]int{1, 0, 1, 1}),
			want: []float32{1, 1, 1, -1, -1, -1, -1, 1, -1, 1, 1, 1},
		},
		{
			name: "b=0000",
			bits: packLSB([]int{0, 0, 0, 0}),
			want: []float32{-1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1},
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := Encode(spec, c.bits, 4)
			if len(got) != len(c.want) {
				t.Fatalf("len(Encode) = %d, want %d", len(got), len(c.want))
			}
			for i := range got {
				if got[i] != c.want[i] {
					t.Errorf("Encode[%d] = %v, want %v", i, got[i], c.want[i])
				}
			}
		})
	}
}

func packLSB(bits []int) []byte {
	out := make([]byte, (len(bits)+7)/8)
	for i, b := range bits {
		if b != 0 {
			out[i/8] |= 1 << uint(i%8)
		}
	}
	return out
}
