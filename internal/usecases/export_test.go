package usecases

// Test hooks for package usecases_test.

func SetEncodeQR(fn func(string, int) ([]byte, error)) func() {
	prev := encodeQR
	encodeQR = fn
	return func() { encodeQR = prev }
}

func SetRandomSuffix(fn func() (string, error)) func() {
	prev := randomSuffix
	randomSuffix = fn
	return func() { randomSuffix = prev }
}

func SetGenerateSessionID(fn func() (string, error)) func() {
	prev := generateSessionID
	generateSessionID = fn
	return func() { generateSessionID = prev }
}

func SetHashPassword(fn func(string) (string, error)) func() {
	prev := hashPassword
	hashPassword = fn
	return func() { hashPassword = prev }
}
