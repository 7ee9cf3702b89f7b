package client

import (
	"sort"
	"sync/atomic"

	"github.com/markadiusz/robots-go/pkg/protocol"
)

var explosionRays = [4][2]int32{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}

// WorldProjector consumes ServerMessages and maintains the derived world
// the GUI needs to render, emitting a DrawMessage after each update.
type WorldProjector struct {
	hello protocol.Hello

	players         map[protocol.PlayerId]protocol.Player
	scores          map[protocol.PlayerId]protocol.Score
	playerPositions map[protocol.PlayerId]protocol.Position
	blocks          map[protocol.Position]struct{}
	tickingBombs    map[protocol.BombId]protocol.Bomb
	explosions      map[protocol.Position]struct{}
	gameTurn        uint16

	awaitingJoin *atomic.Bool
}

// NewWorldProjector creates an empty projector. awaitingJoin is shared
// with the InputRelay and toggled on game start/end.
func NewWorldProjector(awaitingJoin *atomic.Bool) *WorldProjector {
	return &WorldProjector{
		players:         make(map[protocol.PlayerId]protocol.Player),
		scores:          make(map[protocol.PlayerId]protocol.Score),
		playerPositions: make(map[protocol.PlayerId]protocol.Position),
		blocks:          make(map[protocol.Position]struct{}),
		tickingBombs:    make(map[protocol.BombId]protocol.Bomb),
		explosions:      make(map[protocol.Position]struct{}),
		awaitingJoin:    awaitingJoin,
	}
}

// Handle processes one ServerMessage and returns the DrawMessage to send
// to the GUI, if any; GameStarted produces none of its own (the server's
// following Turn 0 will).
func (p *WorldProjector) Handle(msg protocol.ServerMessage) (protocol.DrawMessage, bool) {
	switch {
	case msg.Hello != nil:
		p.hello = *msg.Hello
		return p.lobbyDraw(), true
	case msg.AcceptedPlayer != nil:
		ap := msg.AcceptedPlayer
		p.players[ap.Id] = ap.Player
		p.scores[ap.Id] = 0
		return p.lobbyDraw(), true
	case msg.GameStarted != nil:
		p.players = make(map[protocol.PlayerId]protocol.Player, len(msg.GameStarted.Players))
		for id, pl := range msg.GameStarted.Players {
			p.players[id] = pl
			p.scores[id] = 0
		}
		p.awaitingJoin.Store(false)
		return protocol.DrawMessage{}, false
	case msg.Turn != nil:
		return p.handleTurn(msg.Turn), true
	case msg.GameEnded != nil:
		p.playerPositions = make(map[protocol.PlayerId]protocol.Position)
		p.blocks = make(map[protocol.Position]struct{})
		p.tickingBombs = make(map[protocol.BombId]protocol.Bomb)
		p.explosions = make(map[protocol.Position]struct{})
		p.gameTurn = 0
		p.awaitingJoin.Store(true)
		return p.lobbyDraw(), true
	default:
		return protocol.DrawMessage{}, false
	}
}

func (p *WorldProjector) lobbyDraw() protocol.DrawMessage {
	players := make(map[protocol.PlayerId]protocol.Player, len(p.players))
	for id, pl := range p.players {
		players[id] = pl
	}
	return protocol.DrawMessage{Lobby: &protocol.Lobby{
		ServerName:      p.hello.ServerName,
		PlayersCount:    p.hello.PlayersCount,
		SizeX:           p.hello.SizeX,
		SizeY:           p.hello.SizeY,
		GameLength:      p.hello.GameLength,
		ExplosionRadius: p.hello.ExplosionRadius,
		BombTimer:       p.hello.BombTimer,
		Players:         players,
	}}
}

func (p *WorldProjector) handleTurn(t *protocol.Turn) protocol.DrawMessage {
	p.gameTurn = t.Turn
	p.explosions = make(map[protocol.Position]struct{})

	for id, bomb := range p.tickingBombs {
		bomb.Timer--
		p.tickingBombs[id] = bomb
	}

	exploded := make(map[protocol.PlayerId]struct{})
	for _, ev := range t.Events {
		switch {
		case ev.BombPlaced != nil:
			p.tickingBombs[ev.BombPlaced.Id] = protocol.Bomb{Position: ev.BombPlaced.Position, Timer: p.hello.BombTimer}
		case ev.BombExploded != nil:
			be := ev.BombExploded
			if bomb, ok := p.tickingBombs[be.Id]; ok {
				blocksHit := make(map[protocol.Position]struct{}, len(be.BlocksDestroyed))
				for _, b := range be.BlocksDestroyed {
					blocksHit[b] = struct{}{}
				}
				for _, cell := range castExplosionCells(bomb.Position, blocksHit, p.hello.ExplosionRadius, p.hello.SizeX, p.hello.SizeY) {
					p.explosions[cell] = struct{}{}
				}
			}
			delete(p.tickingBombs, be.Id)
			for _, id := range be.RobotsDestroyed {
				exploded[id] = struct{}{}
			}
			for _, b := range be.BlocksDestroyed {
				delete(p.blocks, b)
			}
		case ev.PlayerMoved != nil:
			p.playerPositions[ev.PlayerMoved.Id] = ev.PlayerMoved.Position
		case ev.BlockPlaced != nil:
			p.blocks[ev.BlockPlaced.Position] = struct{}{}
		}
	}

	for id := range exploded {
		p.scores[id]++
	}

	return protocol.DrawMessage{Game: &protocol.Game{
		ServerName:      p.hello.ServerName,
		SizeX:           p.hello.SizeX,
		SizeY:           p.hello.SizeY,
		GameLength:      p.hello.GameLength,
		Turn:            p.gameTurn,
		Players:         copyPlayers(p.players),
		PlayerPositions: copyPositions(p.playerPositions),
		Blocks:          copyPositionSet(p.blocks),
		Bombs:           copyBombs(p.tickingBombs),
		Explosions:      copyPositionSet(p.explosions),
		Scores:          copyScores(p.scores),
	}}
}

// castExplosionCells mirrors the server's ray cast to shade the cells a
// bomb's blast covers. It does not compute which players were hit; that
// set is authoritative from the server's BombExploded event.
func castExplosionCells(origin protocol.Position, blocksDestroyed map[protocol.Position]struct{}, radius, sizeX, sizeY uint16) []protocol.Position {
	var cells []protocol.Position
	for _, ray := range explosionRays {
		for dist := int32(0); dist <= int32(radius); dist++ {
			x := int32(origin.X) + ray[0]*dist
			y := int32(origin.Y) + ray[1]*dist
			if x < 0 || y < 0 || x >= int32(sizeX) || y >= int32(sizeY) {
				break
			}
			cell := protocol.Position{X: uint16(x), Y: uint16(y)}
			cells = append(cells, cell)
			if _, isBlock := blocksDestroyed[cell]; isBlock {
				break
			}
		}
	}
	return cells
}

func copyPlayers(m map[protocol.PlayerId]protocol.Player) map[protocol.PlayerId]protocol.Player {
	out := make(map[protocol.PlayerId]protocol.Player, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copyPositions(m map[protocol.PlayerId]protocol.Position) map[protocol.PlayerId]protocol.Position {
	out := make(map[protocol.PlayerId]protocol.Position, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copyScores(m map[protocol.PlayerId]protocol.Score) map[protocol.PlayerId]protocol.Score {
	out := make(map[protocol.PlayerId]protocol.Score, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copyPositionSet(m map[protocol.Position]struct{}) []protocol.Position {
	out := make([]protocol.Position, 0, len(m))
	for p := range m {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

func copyBombs(m map[protocol.BombId]protocol.Bomb) []protocol.Bomb {
	out := make([]protocol.Bomb, 0, len(m))
	for _, b := range m {
		out = append(out, b)
	}
	return out
}
