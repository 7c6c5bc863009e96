package service

// DummyPinHash exposes the hash compared against on unknown usernames.
func DummyPinHash() []byte {
	return dummyPinHash()
}

const PinHashCost = pinHashCost
