package domain

// GameAccount is a provisioned platform account that rentals run on.
type GameAccount struct {
	SteamID64   int64
	Email       string
	AccountName string
	Password    string
}

// GameAccountGame links an account to a game it can serve.
type GameAccountGame struct {
	AccountID int64
	GameID    int64
	Available bool
}
