package kinds

const (
	length   = 64
	idLength = 8
	depthMax = length / idLength
	idMask   = (1 << idLength) - 1
)

// Kind packs id together with the ids of every base (and their bases) into a
// single value so that IsKind can answer ancestry with shifts and masks.
func Kind(id uint64, bases ...uint64) uint64 {
	id = id & idMask
	ids := make(map[uint64]struct{})

	for _, base := range bases {
		for j := 0; j < depthMax; j++ {
			baseId := (base >> (idLength * j)) & idMask
			if baseId == 0 {
				break
			}
			if _, ok := ids[baseId]; !ok {
				ids[baseId] = struct{}{}
				id |= baseId << (idLength * len(ids))
			}
		}
	}
	return id
}

// IsKind reports whether kind is, or derives from, any of bases.
func IsKind(kind uint64, bases ...uint64) bool {
	for _, base := range bases {
		baseId := base & idMask
		if kind == baseId {
			return true
		}
		for i := 0; i < depthMax; i++ {
			currentId := (kind >> (idLength * i)) & idMask
			if currentId == baseId {
				return true
			}
		}
	}
	return false
}

var (
	Null      = Kind(0)
	Lifecycle = Kind(1)

	Activation = Kind(2, Lifecycle)
	Activating = Kind(3, Activation)
	Activated  = Kind(4, Activation)

	Deactivation = Kind(5, Lifecycle)
	Deactivating = Kind(6, Deactivation)
	Deactivated  = Kind(7, Deactivation)

	Conduct             = Kind(8, Lifecycle)
	ActivationProcessed = Kind(9, Conduct)
)

var names = map[uint64]string{
	Null:                "null",
	Lifecycle:           "lifecycle",
	Activation:          "activation",
	Activating:          "activating",
	Activated:           "activated",
	Deactivation:        "deactivation",
	Deactivating:        "deactivating",
	Deactivated:         "deactivated",
	Conduct:             "conduct",
	ActivationProcessed: "activation_processed",
}

func Name(kind uint64) string {
	if name, ok := names[kind]; ok {
		return name
	}
	return "unknown"
}
