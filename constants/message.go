package constants

// Response messages shared by validate, service and handler.
const (
	ERROR_INTERNAL_ERROR       = "internal server error"
	ERROR_PARSE_DATA_TO_LOCALS = "failed to read validated input"
	INVALID_DATA_FORMAT        = "Invalid data format"
	MISSING_REQUIRED_FIELDS    = "Missing required fields"

	MISSING_LOGIN_INPUT  = "Email and password required"
	INVALID_EMAIL_FORMAT = "Invalid email format"
	INVALID_CREDENTIALS  = "Invalid email or password"
	PASSWORD_TOO_LONG    = "Password must be at most 72 bytes"
	EMAIL_ALREADY_EXISTS = "Email already exists"
	USER_NOT_FOUND       = "User not found"
	USER_REGISTERED      = "User registered successfully"
	MISSING_TOKEN        = "Missing token"
	INVALID_TOKEN        = "Invalid or expired token"

	EVENT_NOT_FOUND        = "Event not found"
	NOT_AN_ORGANIZER       = "Unauthorized"
	NOT_EVENT_ORGANIZER    = "Unauthorized: Not the event organizer"
	MAX_SEATS_NOT_POSITIVE = "max_seats must be positive"
	PRICE_NEGATIVE         = "price cannot be negative"
	DATE_NOT_IN_FUTURE     = "Event date must be in the future"
	SEATS_BELOW_BOOKED     = "Cannot reduce seats below booked count"
	EVENT_HAS_BOOKINGS     = "Cannot delete event with existing bookings"
	EVENT_CREATED          = "Event created successfully"
	EVENT_DELETED          = "Event deleted successfully"

	BOOKING_NOT_FOUND       = "Booking not found"
	SEAT_COUNT_NOT_POSITIVE = "Seat count must be positive"
	NOT_ENOUGH_SEATS        = "Not enough seats available"
	NOT_BOOKING_OWNER       = "Unauthorized: You can only cancel your own bookings"
	BOOKING_CREATED         = "Booking created successfully"
	BOOKING_CANCELLED       = "Booking cancelled successfully"

	UPLOADS_DISABLED   = "image uploads are not configured"
	MISSING_IMAGE_FILE = "image file is required"
	INVALID_IMAGE_FILE = "file must be an image"
	IMAGE_TOO_LARGE    = "image is too large"
)
