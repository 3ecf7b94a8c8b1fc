package application

// SetIntN replaces the random index source used by RandomImage.
func (s *ImageService) SetIntN(fn func(n int) int) {
	s.intN = fn
}
