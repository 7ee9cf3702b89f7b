// Package protocol implements the binary wire format shared by the Robots
// server and client: length-framed, tag-discriminated, big-endian.
package protocol

// PlayerId identifies a player; assigned sequentially 0..players_count-1.
type PlayerId uint8

// BombId identifies a bomb; assigned monotonically within one game.
type BombId uint32

// Score counts how many times a player has been destroyed.
type Score uint32

// Direction is one of the four axis-aligned movement directions.
type Direction uint8

const (
	Up Direction = iota
	Right
	Down
	Left
)

// Position is a grid cell. Ordering for deterministic encoding is
// lexicographic (X, Y).
type Position struct {
	X, Y uint16
}

// Less reports whether p sorts before o in the wire's canonical order.
func (p Position) Less(o Position) bool {
	if p.X != o.X {
		return p.X < o.X
	}
	return p.Y < o.Y
}

// Move returns the cell adjacent to p in the given direction. The result
// may be out of grid bounds; callers are responsible for bounds checks.
func (p Position) Move(d Direction) (int32, int32) {
	x, y := int32(p.X), int32(p.Y)
	switch d {
	case Up:
		return x, y + 1
	case Right:
		return x + 1, y
	case Down:
		return x, y - 1
	case Left:
		return x - 1, y
	}
	return x, y
}

// Bomb is a ticking bomb: its position and the number of turns left before
// it explodes.
type Bomb struct {
	Position Position
	Timer    uint16
}

// Player is a connected participant, named and located by the server's view
// of its remote endpoint.
type Player struct {
	Name    string
	Address string
}

// Hello announces the game's static configuration. Exactly one is sent to
// every client before any other message.
type Hello struct {
	ServerName      string
	PlayersCount    uint8
	SizeX           uint16
	SizeY           uint16
	GameLength      uint16
	ExplosionRadius uint16
	BombTimer       uint16
}

// AcceptedPlayer announces a newly joined player during the lobby phase.
type AcceptedPlayer struct {
	Id     PlayerId
	Player Player
}

// GameStarted announces the frozen player roster as the game begins.
type GameStarted struct {
	Players map[PlayerId]Player
}

// Turn carries every event computed during one simulation step.
type Turn struct {
	Turn   uint16
	Events []Event
}

// GameEnded announces final scores and the return to the lobby.
type GameEnded struct {
	Scores map[PlayerId]Score
}

// ServerMessage is the sum type of everything the server sends.
type ServerMessage struct {
	Hello          *Hello
	AcceptedPlayer *AcceptedPlayer
	GameStarted    *GameStarted
	Turn           *Turn
	GameEnded      *GameEnded
}

// Event is the sum type of everything that can happen within a Turn.
type Event struct {
	BombPlaced   *BombPlaced
	BombExploded *BombExploded
	PlayerMoved  *PlayerMoved
	BlockPlaced  *BlockPlaced
}

// BombPlaced announces a newly ticking bomb.
type BombPlaced struct {
	Id       BombId
	Position Position
}

// BombExploded announces a bomb's detonation and what it hit. Robot and
// block ids may repeat across rays; consumers must treat both as sets.
type BombExploded struct {
	Id              BombId
	RobotsDestroyed []PlayerId
	BlocksDestroyed []Position
}

// PlayerMoved announces a player's new position, whether from their own
// move or a post-destruction respawn.
type PlayerMoved struct {
	Id       PlayerId
	Position Position
}

// BlockPlaced announces a newly placed block.
type BlockPlaced struct {
	Position Position
}

// ClientMessage is the sum type of everything a client sends to the server.
type ClientMessage struct {
	Join       *Join
	PlaceBomb  *PlaceBomb
	PlaceBlock *PlaceBlock
	Move       *Move
}

// Join requests entry into the lobby under the given display name.
type Join struct {
	Name string
}

// PlaceBomb requests a bomb be placed at the sender's current cell.
type PlaceBomb struct{}

// PlaceBlock requests a block be placed at the sender's current cell.
type PlaceBlock struct{}

// Move requests movement one cell in the given direction.
type Move struct {
	Direction Direction
}

// DrawMessage is the sum type the client sends to the GUI.
type DrawMessage struct {
	Lobby *Lobby
	Game  *Game
}

// Lobby is the GUI's view of the game before it has started.
type Lobby struct {
	ServerName      string
	PlayersCount    uint8
	SizeX           uint16
	SizeY           uint16
	GameLength      uint16
	ExplosionRadius uint16
	BombTimer       uint16
	Players         map[PlayerId]Player
}

// Game is the GUI's view of the in-progress game.
type Game struct {
	ServerName      string
	SizeX           uint16
	SizeY           uint16
	GameLength      uint16
	Turn            uint16
	Players         map[PlayerId]Player
	PlayerPositions map[PlayerId]Position
	Blocks          []Position
	Bombs           []Bomb
	Explosions      []Position
	Scores          map[PlayerId]Score
}

// InputMessage is the sum type the GUI sends to the client.
type InputMessage struct {
	PlaceBomb  *InputPlaceBomb
	PlaceBlock *InputPlaceBlock
	Move       *InputMove
}

// InputPlaceBomb requests a bomb placement from the GUI.
type InputPlaceBomb struct{}

// InputPlaceBlock requests a block placement from the GUI.
type InputPlaceBlock struct{}

// InputMove requests movement in a direction from the GUI.
type InputMove struct {
	Direction Direction
}
