package server

import (
	"sort"
	"time"

	"github.com/markadiusz/robots-go/pkg/protocol"
)

// explosionRays fixes the ray-major order every bomb explodes in: +x,
// -x, +y, -y. Each ray includes distance 0 (the bomb's own cell).
var explosionRays = [4][2]int32{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}

const lobbyPollInterval = 10 * time.Millisecond

// runGameLoop is the GameLoop thread: the sole owner of world state. It
// alternates forever between the lobby and in-game phases.
func (s *Server) runGameLoop() {
	for {
		byID, players := s.runLobbyPhase()
		s.runGamePhase(byID, players)
	}
}

// runLobbyPhase waits for PlayersCount distinct sockets to send Join,
// assigning each the next PlayerId in connection order (not scan order,
// since several Joins can land in the same poll window) and broadcasting
// an AcceptedPlayer as each is accepted.
func (s *Server) runLobbyPhase() (map[protocol.PlayerId]*client, map[protocol.PlayerId]protocol.Player) {
	playing := make(map[*client]protocol.PlayerId)
	byID := make(map[protocol.PlayerId]*client)
	players := make(map[protocol.PlayerId]protocol.Player)
	nextID := protocol.PlayerId(0)

	for len(playing) < int(s.opts.PlayersCount) {
		s.intentsMu.Lock()
		snapshot := s.intents
		s.intents = make(map[*client]protocol.ClientMessage)
		s.intentsMu.Unlock()

		var joining []*client
		for c, msg := range snapshot {
			if msg.Join == nil {
				continue
			}
			if _, already := playing[c]; already {
				continue
			}
			joining = append(joining, c)
		}
		sort.Slice(joining, func(i, j int) bool { return joining[i].seq < joining[j].seq })

		for _, c := range joining {
			if len(playing) == int(s.opts.PlayersCount) {
				break
			}
			id := nextID
			nextID++

			player := protocol.Player{Name: snapshot[c].Join.Name, Address: c.remoteAddr}
			playing[c] = id
			byID[id] = c
			players[id] = player

			ap := protocol.AcceptedPlayer{Id: id, Player: player}
			s.catchingUp.Lock()
			s.history.acceptedPlayers = append(s.history.acceptedPlayers, ap)
			s.broadcastLocked(protocol.ServerMessage{AcceptedPlayer: &ap})
			s.catchingUp.Unlock()
		}

		if len(playing) < int(s.opts.PlayersCount) {
			time.Sleep(lobbyPollInterval)
		}
	}

	gs := &protocol.GameStarted{Players: players}
	s.catchingUp.Lock()
	s.history.gameStarted = gs
	s.broadcastLocked(protocol.ServerMessage{GameStarted: gs})
	s.catchingUp.Unlock()

	return byID, players
}

// runGamePhase simulates one full game: a synthetic Turn 0, GameLength
// ticked turns, then GameEnded. byID maps each PlayerId to the socket
// that owns it; players is the frozen roster announced in GameStarted.
func (s *Server) runGamePhase(byID map[protocol.PlayerId]*client, players map[protocol.PlayerId]protocol.Player) {
	n := protocol.PlayerId(len(players))

	positions := make(map[protocol.PlayerId]protocol.Position, n)
	blocks := make(map[protocol.Position]struct{})
	tickingBombs := make(map[protocol.BombId]protocol.Bomb)
	scores := make(map[protocol.PlayerId]protocol.Score, n)
	var nextBombID protocol.BombId

	var events []protocol.Event
	for id := protocol.PlayerId(0); id < n; id++ {
		pos := generatePosition(s.rng, s.opts.SizeX, s.opts.SizeY)
		positions[id] = pos
		scores[id] = 0
		events = append(events, protocol.Event{PlayerMoved: &protocol.PlayerMoved{Id: id, Position: pos}})
	}
	for i := uint16(0); i < s.opts.InitialBlocks; i++ {
		pos := generatePosition(s.rng, s.opts.SizeX, s.opts.SizeY)
		if _, exists := blocks[pos]; exists {
			continue
		}
		blocks[pos] = struct{}{}
		events = append(events, protocol.Event{BlockPlaced: &protocol.BlockPlaced{Position: pos}})
	}
	s.broadcastTurn(protocol.Turn{Turn: 0, Events: events})

	for turnNo := uint16(1); turnNo <= s.opts.GameLength; turnNo++ {
		time.Sleep(s.opts.TurnDuration)

		var turnEvents []protocol.Event
		destroyed := make(map[protocol.PlayerId]struct{})

		bombIDs := make([]protocol.BombId, 0, len(tickingBombs))
		for id := range tickingBombs {
			bombIDs = append(bombIDs, id)
		}
		sort.Slice(bombIDs, func(i, j int) bool { return bombIDs[i] < bombIDs[j] })

		for _, id := range bombIDs {
			bomb := tickingBombs[id]
			bomb.Timer--
			if bomb.Timer > 0 {
				tickingBombs[id] = bomb
				continue
			}
			delete(tickingBombs, id)

			robots, blocksDestroyed := castExplosion(bomb.Position, blocks, positions, s.opts.ExplosionRadius, s.opts.SizeX, s.opts.SizeY)
			for _, p := range robots {
				destroyed[p] = struct{}{}
			}
			for _, b := range blocksDestroyed {
				delete(blocks, b)
			}
			turnEvents = append(turnEvents, protocol.Event{BombExploded: &protocol.BombExploded{
				Id:              id,
				RobotsDestroyed: robots,
				BlocksDestroyed: blocksDestroyed,
			}})
		}

		for p := range destroyed {
			scores[p]++
		}

		s.intentsMu.Lock()
		snapshot := s.intents
		s.intents = make(map[*client]protocol.ClientMessage)
		s.intentsMu.Unlock()

		stagedBlocks := make(map[protocol.Position]struct{})
		for id := protocol.PlayerId(0); id < n; id++ {
			if _, wasDestroyed := destroyed[id]; wasDestroyed {
				pos := generatePosition(s.rng, s.opts.SizeX, s.opts.SizeY)
				positions[id] = pos
				turnEvents = append(turnEvents, protocol.Event{PlayerMoved: &protocol.PlayerMoved{Id: id, Position: pos}})
				continue
			}

			msg, ok := snapshot[byID[id]]
			if !ok {
				continue
			}
			switch {
			case msg.PlaceBomb != nil:
				bombID := nextBombID
				nextBombID++
				pos := positions[id]
				tickingBombs[bombID] = protocol.Bomb{Position: pos, Timer: s.opts.BombTimer}
				turnEvents = append(turnEvents, protocol.Event{BombPlaced: &protocol.BombPlaced{Id: bombID, Position: pos}})
			case msg.PlaceBlock != nil:
				pos := positions[id]
				if _, isBlock := blocks[pos]; !isBlock {
					stagedBlocks[pos] = struct{}{}
					turnEvents = append(turnEvents, protocol.Event{BlockPlaced: &protocol.BlockPlaced{Position: pos}})
				}
			case msg.Move != nil:
				x, y := positions[id].Move(msg.Move.Direction)
				if x < 0 || y < 0 || x >= int32(s.opts.SizeX) || y >= int32(s.opts.SizeY) {
					continue
				}
				newPos := protocol.Position{X: uint16(x), Y: uint16(y)}
				if _, isBlock := blocks[newPos]; isBlock {
					continue
				}
				positions[id] = newPos
				turnEvents = append(turnEvents, protocol.Event{PlayerMoved: &protocol.PlayerMoved{Id: id, Position: newPos}})
			}
		}

		for pos := range stagedBlocks {
			blocks[pos] = struct{}{}
		}

		s.broadcastTurn(protocol.Turn{Turn: turnNo, Events: turnEvents})
	}

	scoresCopy := make(map[protocol.PlayerId]protocol.Score, len(scores))
	for id, sc := range scores {
		scoresCopy[id] = sc
	}

	s.catchingUp.Lock()
	s.broadcastLocked(protocol.ServerMessage{GameEnded: &protocol.GameEnded{Scores: scoresCopy}})
	s.history.acceptedPlayers = nil
	s.history.gameStarted = nil
	s.history.turns = nil
	s.catchingUp.Unlock()
}

// broadcastTurn appends t to history and broadcasts it under the
// catch-up guard.
func (s *Server) broadcastTurn(t protocol.Turn) {
	s.catchingUp.Lock()
	s.history.turns = append(s.history.turns, t)
	s.broadcastLocked(protocol.ServerMessage{Turn: &t})
	s.catchingUp.Unlock()
}

// castExplosion computes one bomb's blast: four axis-aligned rays, each
// starting at the bomb's own cell and extending up to radius cells
// inclusive, stopping at the grid edge (not emitted) or at the first
// block on that ray (emitted, then the ray stops). The same player or
// block may appear more than once across rays; callers apply set
// semantics.
func castExplosion(origin protocol.Position, blocks map[protocol.Position]struct{}, positions map[protocol.PlayerId]protocol.Position, radius, sizeX, sizeY uint16) ([]protocol.PlayerId, []protocol.Position) {
	var robots []protocol.PlayerId
	var blocksDestroyed []protocol.Position

	for _, ray := range explosionRays {
		for dist := int32(0); dist <= int32(radius); dist++ {
			x := int32(origin.X) + ray[0]*dist
			y := int32(origin.Y) + ray[1]*dist
			if x < 0 || y < 0 || x >= int32(sizeX) || y >= int32(sizeY) {
				break
			}
			cell := protocol.Position{X: uint16(x), Y: uint16(y)}

			var hit []protocol.PlayerId
			for id, pos := range positions {
				if pos == cell {
					hit = append(hit, id)
				}
			}
			sort.Slice(hit, func(i, j int) bool { return hit[i] < hit[j] })
			robots = append(robots, hit...)

			if _, isBlock := blocks[cell]; isBlock {
				blocksDestroyed = append(blocksDestroyed, cell)
				break
			}
		}
	}

	return robots, blocksDestroyed
}
