package protocol

// Face is one of the six directions of a voxel surface.
type Face string

const (
	FaceTop    Face = "TOP"
	FaceBottom Face = "BOTTOM"
	FaceNorth  Face = "NORTH"
	FaceSouth  Face = "SOUTH"
	FaceEast   Face = "EAST"
	FaceWest   Face = "WEST"
	FaceNone   Face = "NONE"
)

var knownFaces = map[Face]struct{}{
	FaceTop:    {},
	FaceBottom: {},
	FaceNorth:  {},
	FaceSouth:  {},
	FaceEast:   {},
	FaceWest:   {},
	FaceNone:   {},
}

func IsKnownFace(f Face) bool {
	if f == "" {
		return true
	}
	_, ok := knownFaces[f]
	return ok
}
