package vpic

import "github.com/five82/vpick/internal/catalog"

// envelope mirrors the wrapper every vPIC endpoint returns.
type envelope[T any] struct {
	Count          int     `json:"Count"`
	Message        string  `json:"Message"`
	SearchCriteria *string `json:"SearchCriteria"`
	Results        []T     `json:"Results"`
}

// makeRecord mirrors one entry of /vehicles/getallmakes.
type makeRecord struct {
	MakeID   int    `json:"Make_ID"`
	MakeName string `json:"Make_Name"`
}

// typeRecord mirrors one entry of /vehicles/GetVehicleTypesForMakeId.
type typeRecord struct {
	VehicleTypeID   int    `json:"VehicleTypeId"`
	VehicleTypeName string `json:"VehicleTypeName"`
}

// modelRecord mirrors one entry of /vehicles/GetModelsForMakeId.
type modelRecord struct {
	MakeID    int    `json:"Make_ID"`
	MakeName  string `json:"Make_Name"`
	ModelID   int    `json:"Model_ID"`
	ModelName string `json:"Model_Name"`
}

func (r makeRecord) toMake() catalog.Make {
	return catalog.Make{ID: r.MakeID, Name: r.MakeName}
}

func (r typeRecord) toType() catalog.VehicleType {
	return catalog.VehicleType{ID: r.VehicleTypeID, Name: r.VehicleTypeName}
}

// toModel stamps the requested key as owner so every model lands in the
// slot that was asked for.
func (r modelRecord) toModel(requested int) catalog.VehicleModel {
	return catalog.VehicleModel{ID: r.ModelID, Name: r.ModelName, MakeID: requested, MakeName: r.MakeName}
}

func convert[R, T any](records []R, fn func(R) T) []T {
	out := make([]T, 0, len(records))
	for _, r := range records {
		out = append(out, fn(r))
	}
	return out
}
