package mathutil

// ParallelEpsilon bounds |n·d| below which a ray counts as parallel to a plane.
const ParallelEpsilon = 1e-9

// PoseEpsilon is the tolerance used when comparing composed poses.
const PoseEpsilon = 1e-5
