package game

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/pthm-cable/blobs/components"
)

// CommandType identifies a queued user request.
type CommandType uint8

const (
	CmdMove CommandType = iota
	CmdRelease
	CmdSpawn
)

// Command is a user request applied at the next tick boundary.
type Command struct {
	Type   CommandType
	ID     uint64
	X, Y   float64
	Kind   components.Kind // for CmdSpawn
	HasPos bool            // for CmdSpawn; false picks a random position
}

// CommandQueue collects commands from any goroutine until the stepper drains them.
type CommandQueue struct {
	mu      sync.Mutex
	pending []Command
}

// Push appends a command.
func (q *CommandQueue) Push(c Command) {
	q.mu.Lock()
	q.pending = append(q.pending, c)
	q.mu.Unlock()
}

// Drain moves all pending commands into dst, in arrival order.
func (q *CommandQueue) Drain(dst []Command) []Command {
	q.mu.Lock()
	dst = append(dst[:0], q.pending...)
	q.pending = q.pending[:0]
	q.mu.Unlock()
	return dst
}

// Len returns the number of pending commands.
func (q *CommandQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// RequestMove asks for an entity to be held at (x, y). A held blob ignores
// steering until ReleaseMove.
func (g *Game) RequestMove(id uint64, x, y float64) {
	g.commands.Push(Command{Type: CmdMove, ID: id, X: x, Y: y})
}

// ReleaseMove lets a held blob move on its own again.
func (g *Game) ReleaseMove(id uint64) {
	g.commands.Push(Command{Type: CmdRelease, ID: id})
}

// RequestSpawn asks for a new entity. A nil position picks a random one.
func (g *Game) RequestSpawn(kind components.Kind, pos *components.Position) {
	c := Command{Type: CmdSpawn, Kind: kind}
	if pos != nil {
		c.X, c.Y, c.HasPos = pos.X, pos.Y, true
	}
	g.commands.Push(c)
}

// applyCommands drains the queue. Commands naming entities that are gone are dropped.
func (g *Game) applyCommands(report *StepReport) {
	g.commandBuf = g.commands.Drain(g.commandBuf)
	for _, c := range g.commandBuf {
		var err error
		switch c.Type {
		case CmdMove:
			err = g.holdEntity(c.ID, c.X, c.Y)
		case CmdRelease:
			err = g.releaseEntity(c.ID)
		case CmdSpawn:
			var spawned bool
			spawned, err = g.spawnRequested(c)
			if spawned {
				report.Spawned++
			}
		}
		if err != nil {
			slog.Debug("command dropped", "type", c.Type, "id", c.ID, "error", err)
		}
	}
}

func (g *Game) holdEntity(id uint64, x, y float64) error {
	if err := validCircle(x, y, 1); err != nil {
		return err
	}
	x, y = g.clampToWorld(x, y)
	if blob, ok := g.world.Blob(id); ok {
		blob.Behavior.Held = true
		blob.Behavior.HoldX = x
		blob.Behavior.HoldY = y
		return nil
	}
	if food, ok := g.world.Food(id); ok {
		food.Pos.X, food.Pos.Y = x, y
		return nil
	}
	return fmt.Errorf("%w: %d", ErrUnknownEntity, id)
}

func (g *Game) releaseEntity(id uint64) error {
	if blob, ok := g.world.Blob(id); ok {
		blob.Behavior.Held = false
		blob.Behavior.Mode = components.ModeRoaming
		return nil
	}
	if _, ok := g.world.Kind(id); ok {
		return nil
	}
	return fmt.Errorf("%w: %d", ErrUnknownEntity, id)
}

func (g *Game) spawnRequested(c Command) (bool, error) {
	x, y := c.X, c.Y
	if !c.HasPos {
		x, y = g.randomPosition()
	} else {
		if err := validCircle(x, y, 1); err != nil {
			return false, err
		}
		x, y = g.clampToWorld(x, y)
	}

	blobs, food := g.world.Counts()
	switch c.Kind {
	case components.KindBlob:
		if blobs >= g.cfg.Population.MaxBlobs {
			return false, fmt.Errorf("blob cap %d reached", g.cfg.Population.MaxBlobs)
		}
		_, err := g.spawnBlob(x, y)
		return err == nil, err
	case components.KindFood:
		if food >= g.cfg.Population.MaxFood {
			return false, fmt.Errorf("food cap %d reached", g.cfg.Population.MaxFood)
		}
		_, err := g.spawnFood(x, y)
		return err == nil, err
	}
	return false, fmt.Errorf("unknown kind %d", c.Kind)
}

func (t CommandType) String() string {
	switch t {
	case CmdMove:
		return "move"
	case CmdRelease:
		return "release"
	case CmdSpawn:
		return "spawn"
	}
	return "unknown"
}
