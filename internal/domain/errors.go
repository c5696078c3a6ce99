package domain

import "errors"

var ErrInvalidTimeWindow = errors.New("invalid time window")

// ErrGroupOverlap marks a visit group whose members cannot be co-scheduled.
var ErrGroupOverlap = errors.New("visit group members do not overlap")

var ErrNotFound = errors.New("requested resource not found")

// ErrInvalidRecord is returned when a source row fails schema validation.
var ErrInvalidRecord = errors.New("invalid source record")

var ErrDuplicateID = errors.New("duplicate id")

// ErrUnknownVehicle marks an allowed-vehicle reference with no matching vehicle.
var ErrUnknownVehicle = errors.New("unknown vehicle")
