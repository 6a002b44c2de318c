package catalog

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/msucast/bmpopt/internal/model"
)

func splitInts(key string, n int) ([]int, error) {
	parts := strings.Split(key, "_")
	if len(parts) != n {
		return nil, fmt.Errorf("composite key %q: expected %d underscore-delimited fields, got %d", key, n, len(parts))
	}
	out := make([]int, n)
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("composite key %q: field %d (%q) is not an integer: %w", key, i, p, err)
		}
		out[i] = v
	}
	return out, nil
}

// parseParcelKey parses the "lrseg_agency_loadsource" composite string
// key used throughout the base-scenario document.
func parseParcelKey(key string) (model.ParcelKey, error) {
	v, err := splitInts(key, 3)
	if err != nil {
		return model.ParcelKey{}, err
	}
	return model.ParcelKey{LRSeg: v[0], Agency: v[1], LoadSource: v[2]}, nil
}

// parseStateBMP parses the "state_bmp" composite key used for
// unit-cost lookups.
func parseStateBMP(key string) (model.StateBMP, error) {
	v, err := splitInts(key, 2)
	if err != nil {
		return model.StateBMP{}, err
	}
	return model.StateBMP{State: v[0], BMP: v[1]}, nil
}

// parseAnimalKey parses the
// "basecondition_county_loadsource_animalid" composite key used for
// animal inventory rows.
func parseAnimalKey(key string) (model.AnimalKey, error) {
	v, err := splitInts(key, 4)
	if err != nil {
		return model.AnimalKey{}, err
	}
	return model.AnimalKey{BaseCondition: v[0], County: v[1], LoadSource: v[2], AnimalID: v[3]}, nil
}
