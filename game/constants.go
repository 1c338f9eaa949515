package game

const (
	// StepHeight is the height an entity on ground may climb without jumping.
	StepHeight = 0.6
	// DefaultGravity is the downward acceleration per tick after air drag, used as the minimum
	// falling speed for honey sliding.
	DefaultGravity = 0.0784
	// DefaultYOnGround is the margin below the feet within which geometry counts as ground.
	DefaultYOnGround = 0.001
	// EntityStackMargin is the horizontal margin used when testing for entities to stand on.
	EntityStackMargin = 0.25

	// NormalizeEpsilon is the length under which a vector is considered to have no direction.
	NormalizeEpsilon = 1e-4
)

const (
	// LiquidEpsilon is the contraction applied to the box before scanning for liquids on modern clients.
	LiquidEpsilon = 0.001
	// LiquidDepthExpansion is added to the submersion depth of a modern liquid push.
	LiquidDepthExpansion = 0.001
	// LegacyWaterContraction is the extra vertical contraction applied to the box for water on
	// clients older than 1.13.
	LegacyWaterContraction = 0.4
	// LegacyLavaContractionXZ and LegacyLavaContractionY are the contractions of the lava scan on
	// clients older than 1.14.
	LegacyLavaContractionXZ = 0.1
	LegacyLavaContractionY  = 0.4
	// FallingLiquidBelowOffset is subtracted from the height of the liquid below an empty neighbour
	// when computing flow.
	FallingLiquidBelowOffset = 0.8888889
	// FallingLiquidPush is the vertical flow added to falling liquid next to a solid face.
	FallingLiquidPush = -6.0
	// FallingLiquidData is the first liquid data value that marks a falling liquid.
	FallingLiquidData = 8
)

const (
	WaterPushMultiplier       = 0.014
	NetherLavaPushMultiplier  = 0.007
	LavaPushMultiplier        = 0.0023333333333333335
	FullDepthPushThreshold    = 0.4
	NegligibleHorizontalSpeed = 0.003
	MinimumPushMagnitude      = 0.0045000000000000005
)

const (
	// HeadObstructionLattice is the spacing of the step correction lattice of the head obstruction test.
	HeadObstructionLattice = 0.25
	// HeadObstructionOffset is added to the fractional part of the head position before snapping.
	HeadObstructionOffset = 0.35
	// StickySideMargin is the horizontal margin used to find sticky blocks next to an entity.
	StickySideMargin = 0.01
	// LegacyBelowOffset is the distance below the feet at which the supporting block is read on
	// clients up to 1.19.4. Newer clients use SupportingBelowOffset.
	LegacyBelowOffset     = 0.2
	SupportingBelowOffset = 0.5000001
)
