package workload

import "github.com/weiihann/assetbench/chain"

// SeedAssets returns the three sample records registered right after
// deployment.
func SeedAssets() []chain.Asset {
	return []chain.Asset{
		{
			Name:       "Button Light1",
			Building:   "BuildingA",
			Floor:      1,
			Room:       101,
			Brand:      "Philips",
			Model:      "ModelX",
			IPFSHash:   "bafkreid472aabic3vwlpqtvm2kqjtdicsuas4kky5mpteopqmmtheevptq",
			GlobalID:   "3KDlOYIonFEw0RTYs8cxm9",
			PositionID: "BL1",
			PhysicalID: "BL001",
		},
		{
			Name:       "Button Light1",
			Building:   "BuildingA",
			Floor:      1,
			Room:       102,
			Brand:      "Philips",
			Model:      "ModelX",
			IPFSHash:   "bafkreif6uabvnxldpukbh7wenyf5cqlauwphlnmqfidockctaleud3vqse",
			GlobalID:   "3KDlOYIonFEw0RTYs8cxm6",
			PositionID: "BL2",
			PhysicalID: "BL002",
		},
		{
			Name:       "RedInt",
			Building:   "BuildingA",
			Floor:      1,
			Room:       103,
			Brand:      "Philips",
			Model:      "ModelX",
			IPFSHash:   "bafkreie5naoiiahgsd6uv7qpm65hwj5il44ohmhfnolqbkcobnvoc5q7ea",
			GlobalID:   "3KDlOYIonFEw0RTYs8chY_",
			PositionID: "RL3",
			PhysicalID: "RL003",
		},
	}
}

// BenchmarkAsset is the record the benchmark registers in its first step.
// Its global id is distinct from the seeded records.
func BenchmarkAsset() chain.Asset {
	return chain.Asset{
		Name:       "Lamp5",
		Building:   "BuildingA",
		Floor:      1,
		Room:       104,
		Brand:      "Philips",
		Model:      "ModelX",
		IPFSHash:   "bafkreiewjfijkxcs5wdhjwnebhs7dum5cvnjymb72ljb6fv2h2y4vtp72a",
		GlobalID:   "0wl6RGv6L2yx2_OHNfdKbL",
		PositionID: "P5",
		PhysicalID: "LAMP005",
	}
}

// SeedSteps returns the seed registrations as workload operations.
func SeedSteps() []Operation {
	assets := SeedAssets()
	ops := make([]Operation, 0, len(assets))

	for i := range assets {
		ops = append(ops, Operation{
			Op:    OpRegisterAsset,
			Role:  chain.RoleAdmin,
			Asset: &assets[i],
		})
	}

	return ops
}
