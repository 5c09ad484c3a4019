package domain

import "time"

// FriendEdge est une ligne orientée (Owner -> Friend). Une amitié confirmée
// est toujours stockée sous forme de deux lignes symétriques.
type FriendEdge struct {
	OwnerID   int64
	FriendID  int64
	CreatedAt time.Time
}

// Pair renvoie les deux lignes d'une amitié entre a et b.
func Pair(a, b int64, at time.Time) [2]FriendEdge {
	return [2]FriendEdge{
		{OwnerID: a, FriendID: b, CreatedAt: at},
		{OwnerID: b, FriendID: a, CreatedAt: at},
	}
}

// FriendRequest est une demande en attente ; elle disparaît à l'acceptation ou au refus.
type FriendRequest struct {
	ID         int64
	SenderID   int64
	ReceiverID int64
	CreatedAt  time.Time

	// Renseigné à la lecture pour l'affichage de la boîte de réception
	Sender *Member
}

