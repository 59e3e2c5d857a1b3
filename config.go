package fennecs

// Config holds process-wide tunables for the core.
var Config config = config{
	DefaultCapacity:  2,
	JobConcurrency:   0,
	DebugAssertions:  true,
	CascadeOnDespawn: false,
}

type config struct {
	// DefaultCapacity is the initial backing capacity a new column is
	// allocated with. Must be a power of two, minimum 2.
	DefaultCapacity int

	// JobConcurrency is the divisor Job1/Job2 use to size chunks: each
	// archetype's rows are split into chunks of max(1, total/JobConcurrency).
	// Zero means "use runtime.GOMAXPROCS(0)". It does not limit how many
	// chunks run at once; every chunk gets its own goroutine.
	JobConcurrency int

	// DebugAssertions enables the best-effort detection of structural
	// mutation attempted from within an iteration callback (spec: "Forbidden
	// ... enforcement is best-effort"). Disabling it skips only the check in
	// beginWrite; readers are still recorded, and a structural mutation from
	// inside a callback then blocks on the read lock its own goroutine holds.
	DebugAssertions bool

	// CascadeOnDespawn enables the optional cleanup pass that scans
	// archetypes for relation targets pointing at a just-despawned entity.
	// Off by default: dangling relation targets are a documented hazard, not
	// a correctness requirement (spec §9).
	CascadeOnDespawn bool
}

// SetDefaultCapacity overrides the initial column capacity new archetypes
// are built with.
func (c *config) SetDefaultCapacity(n int) {
	c.DefaultCapacity = nextPow2(max(2, n))
}

// SetJobConcurrency overrides the chunk-size divisor Job1/Job2 use.
func (c *config) SetJobConcurrency(n int) {
	c.JobConcurrency = n
}

// SetDebugAssertions toggles the reentrant structural-mutation check.
func (c *config) SetDebugAssertions(on bool) {
	c.DebugAssertions = on
}

// SetCascadeOnDespawn toggles the optional despawn-cascade cleanup pass.
func (c *config) SetCascadeOnDespawn(on bool) {
	c.CascadeOnDespawn = on
}
