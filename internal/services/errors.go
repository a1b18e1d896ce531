package services

import "errors"

var (
	// identity
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired refresh token")
	ErrUserNotFound       = errors.New("user not found")
	ErrAccountInactive    = errors.New("account is deactivated")
	ErrCannotModifySelf   = errors.New("administrators cannot demote, deactivate or delete themselves")

	// tours
	ErrTourNotFound = errors.New("tour not found")
	ErrAccessDenied = errors.New("access denied")
	ErrNoPanoramas  = errors.New("a tour needs at least one active panorama to be published")

	// panoramas
	ErrPanoramaNotFound               = errors.New("panorama not found")
	ErrCannotDeactivateStartPanorama  = errors.New("cannot deactivate the only active panorama of a published tour")
	ErrCannotDeleteOnlyActivePanorama = errors.New("cannot delete the only active panorama of a published tour")
	ErrInvalidPanoramaIDs             = errors.New("panorama ids must be unique ids of this tour's panoramas")
	ErrInvalidPanoramaCount           = errors.New("panorama ids must list every panorama of the tour")
	ErrInvalidFileType                = errors.New("unsupported file type")
	ErrFileTooLarge                   = errors.New("file exceeds the maximum upload size")

	// hotspots
	ErrHotspotNotFound        = errors.New("hotspot not found")
	ErrTargetPanoramaNotFound = errors.New("target panorama not found in this tour")
	ErrTargetPanoramaRequired = errors.New("scene hotspots require a target panorama")
)
