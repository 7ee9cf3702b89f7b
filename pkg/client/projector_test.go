package client

import (
	"sync/atomic"
	"testing"

	"github.com/markadiusz/robots-go/pkg/protocol"
)

func TestWorldProjectorJoinThroughTurnZero(t *testing.T) {
	var awaitingJoin atomic.Bool
	p := NewWorldProjector(&awaitingJoin)

	hello := protocol.ServerMessage{Hello: &protocol.Hello{
		ServerName: "test", PlayersCount: 2, SizeX: 10, SizeY: 10,
		GameLength: 100, ExplosionRadius: 3, BombTimer: 4,
	}}
	if draw, ok := p.Handle(hello); !ok || draw.Lobby == nil {
		t.Fatalf("expected Lobby draw after Hello, got %+v", draw)
	}

	ap1 := protocol.ServerMessage{AcceptedPlayer: &protocol.AcceptedPlayer{
		Id: 0, Player: protocol.Player{Name: "alice", Address: "127.0.0.1:1"},
	}}
	draw, ok := p.Handle(ap1)
	if !ok || draw.Lobby == nil || len(draw.Lobby.Players) != 1 {
		t.Fatalf("expected Lobby draw with 1 player, got %+v", draw)
	}

	ap2 := protocol.ServerMessage{AcceptedPlayer: &protocol.AcceptedPlayer{
		Id: 1, Player: protocol.Player{Name: "bob", Address: "127.0.0.1:2"},
	}}
	draw, ok = p.Handle(ap2)
	if !ok || draw.Lobby == nil || len(draw.Lobby.Players) != 2 {
		t.Fatalf("expected Lobby draw with 2 players, got %+v", draw)
	}

	gameStarted := protocol.ServerMessage{GameStarted: &protocol.GameStarted{
		Players: map[protocol.PlayerId]protocol.Player{
			0: {Name: "alice", Address: "127.0.0.1:1"},
			1: {Name: "bob", Address: "127.0.0.1:2"},
		},
	}}
	if _, ok := p.Handle(gameStarted); ok {
		t.Fatal("expected no draw emitted for GameStarted")
	}
	if awaitingJoin.Load() {
		t.Fatal("expected awaitingJoin cleared after GameStarted")
	}

	turn0 := protocol.ServerMessage{Turn: &protocol.Turn{
		Turn: 0,
		Events: []protocol.Event{
			{PlayerMoved: &protocol.PlayerMoved{Id: 0, Position: protocol.Position{X: 1, Y: 1}}},
			{PlayerMoved: &protocol.PlayerMoved{Id: 1, Position: protocol.Position{X: 2, Y: 2}}},
			{BlockPlaced: &protocol.BlockPlaced{Position: protocol.Position{X: 5, Y: 5}}},
		},
	}}
	draw, ok = p.Handle(turn0)
	if !ok || draw.Game == nil {
		t.Fatalf("expected Game draw after Turn 0, got %+v", draw)
	}
	if len(draw.Game.Players) != 2 {
		t.Fatalf("game.players: got %+v", draw.Game.Players)
	}
	if draw.Game.PlayerPositions[0] != (protocol.Position{X: 1, Y: 1}) {
		t.Fatalf("player 0 position: got %+v", draw.Game.PlayerPositions[0])
	}
	if draw.Game.PlayerPositions[1] != (protocol.Position{X: 2, Y: 2}) {
		t.Fatalf("player 1 position: got %+v", draw.Game.PlayerPositions[1])
	}
	if len(draw.Game.Blocks) != 1 || draw.Game.Blocks[0] != (protocol.Position{X: 5, Y: 5}) {
		t.Fatalf("blocks: got %+v", draw.Game.Blocks)
	}
}

func TestWorldProjectorExplosionTracksScoreAndExplosionCells(t *testing.T) {
	var awaitingJoin atomic.Bool
	p := NewWorldProjector(&awaitingJoin)

	p.Handle(protocol.ServerMessage{Hello: &protocol.Hello{
		SizeX: 10, SizeY: 10, ExplosionRadius: 2, BombTimer: 3,
	}})
	p.Handle(protocol.ServerMessage{GameStarted: &protocol.GameStarted{
		Players: map[protocol.PlayerId]protocol.Player{0: {Name: "alice"}},
	}})

	p.Handle(protocol.ServerMessage{Turn: &protocol.Turn{
		Turn: 0,
		Events: []protocol.Event{
			{PlayerMoved: &protocol.PlayerMoved{Id: 0, Position: protocol.Position{X: 5, Y: 5}}},
			{BombPlaced: &protocol.BombPlaced{Id: 0, Position: protocol.Position{X: 5, Y: 5}}},
		},
	}})

	draw, ok := p.Handle(protocol.ServerMessage{Turn: &protocol.Turn{
		Turn: 1,
		Events: []protocol.Event{
			{BombExploded: &protocol.BombExploded{
				Id:              0,
				RobotsDestroyed: []protocol.PlayerId{0},
				BlocksDestroyed: nil,
			}},
			{PlayerMoved: &protocol.PlayerMoved{Id: 0, Position: protocol.Position{X: 1, Y: 1}}},
		},
	}})
	if !ok || draw.Game == nil {
		t.Fatalf("expected Game draw, got %+v", draw)
	}
	if draw.Game.Scores[0] != 1 {
		t.Fatalf("expected score 1 after explosion, got %d", draw.Game.Scores[0])
	}
	if len(draw.Game.Bombs) != 0 {
		t.Fatalf("expected bomb removed after exploding, got %+v", draw.Game.Bombs)
	}
	// 4 rays * (radius+1)=3 cells, minus double counted origin (included
	// once per ray but deduplicated by the explosions set) = 1 + 4*2 = 9.
	if len(draw.Game.Explosions) != 9 {
		t.Fatalf("expected 9 distinct explosion cells, got %d: %+v", len(draw.Game.Explosions), draw.Game.Explosions)
	}
}

func TestWorldProjectorGameEndedResetsAndAwaitsJoin(t *testing.T) {
	var awaitingJoin atomic.Bool
	p := NewWorldProjector(&awaitingJoin)
	p.Handle(protocol.ServerMessage{Hello: &protocol.Hello{ServerName: "test"}})
	p.Handle(protocol.ServerMessage{GameStarted: &protocol.GameStarted{
		Players: map[protocol.PlayerId]protocol.Player{0: {Name: "alice"}},
	}})

	draw, ok := p.Handle(protocol.ServerMessage{GameEnded: &protocol.GameEnded{
		Scores: map[protocol.PlayerId]protocol.Score{0: 2},
	}})
	if !ok || draw.Lobby == nil {
		t.Fatalf("expected Lobby draw after GameEnded, got %+v", draw)
	}
	if !awaitingJoin.Load() {
		t.Fatal("expected awaitingJoin set after GameEnded")
	}
}

func TestCastExplosionCellsStopsAtBlock(t *testing.T) {
	blocks := map[protocol.Position]struct{}{{X: 2, Y: 5}: {}}
	cells := castExplosionCells(protocol.Position{X: 5, Y: 5}, blocks, 5, 10, 10)

	seen := make(map[protocol.Position]bool)
	for _, c := range cells {
		seen[c] = true
	}
	if !seen[(protocol.Position{X: 2, Y: 5})] {
		t.Fatal("expected block cell (2,5) to be included before the ray stops")
	}
	if seen[(protocol.Position{X: 1, Y: 5})] {
		t.Fatal("ray should have stopped at the block, not continued past it")
	}
}
