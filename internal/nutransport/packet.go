package nutransport

// Fate is the terminal-state machine for a Packet.
type Fate uint8

const (
	// Moving is the only non-terminal fate.
	Moving Fate = iota
	Escaped
	Absorbed
	Rouletted
)

func (f Fate) String() string {
	switch f {
	case Moving:
		return "moving"
	case Escaped:
		return "escaped"
	case Absorbed:
		return "absorbed"
	case Rouletted:
		return "rouletted"
	default:
		return "unknown"
	}
}

// Terminal reports whether f is one of the three terminal fates.
func (f Fate) Terminal() bool { return f != Moving }

// Packet is the unit of Monte Carlo work: a sample representing N physical
// neutrinos of species S.
type Packet struct {
	X FourVector // xᵘ: 3 spatial components + affine-length step budget
	K FourVector // kᵘ: null 4-wavevector
	N Real // packet number, physical neutrinos represented; > 0 while alive
	Tau Real // remaining optical depth budget, resampled at each interaction
	Species int
	Fate Fate
	// Rank attributes this packet to a synthetic MPI rank;
	// it never changes after creation. Reduction combines per-rank
	// accumulators and does not read it.
	Rank int
}

// Alive reports whether the packet is still being propagated.
func (p *Packet) Alive() bool { return p.Fate == Moving && p.N > 0 }
