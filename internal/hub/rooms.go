package hub

// rooms maps a room name to the clients joined to it. Callers hold the hub mutex.
type rooms map[string]map[int64]*Client

func (rs rooms) subscribe(room string, client *Client) {
	members, ok := rs[room]
	if !ok {
		members = make(map[int64]*Client)
		rs[room] = members
	}
	members[client.ID] = client
}

func (rs rooms) unsubscribe(room string, clientID int64) {
	members := rs[room]

	// this won't run in case room doesn't exist since members will be nil
	delete(members, clientID)

	// delete room from map if no client is subscribed to it
	if len(members) == 0 {
		delete(rs, room)
	}
}
