package provision

import (
	"context"

	"github.com/smartdom/smartdom-core/internal/catalog"
	"github.com/smartdom/smartdom-core/internal/home"
)

type numberKey struct {
	roomID int64
	kind   catalog.Kind
}

// numberPool hands out sensor numbers per (room, kind). The first request
// for a key reads the current maximum from the repository; every request
// after that increments in memory, so sensors created in one batch get
// consecutive numbers without re-querying.
type numberPool struct {
	sensors home.SensorRepository
	next    map[numberKey]int
}

func newNumberPool(sensors home.SensorRepository) *numberPool {
	return &numberPool{
		sensors: sensors,
		next:    make(map[numberKey]int),
	}
}

func (p *numberPool) allocate(ctx context.Context, roomID int64, kind catalog.Kind) (int, error) {
	key := numberKey{roomID: roomID, kind: kind}
	if n, ok := p.next[key]; ok {
		p.next[key] = n + 1
		return n, nil
	}
	max, err := p.sensors.MaxNumber(ctx, roomID, kind)
	if err != nil {
		return 0, err
	}
	p.next[key] = max + 2
	return max + 1, nil
}
