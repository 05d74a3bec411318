package geom

// Pose is the camera position and facing direction supplied by the
// rendering collaborator
type Pose struct {
	Position Vec3 `json:"position"`
	Forward  Vec3 `json:"forward"`
}
