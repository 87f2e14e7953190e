package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Slot Booking API",
        "description": "Appointment slot availability, booking and administration.",
        "version": "1.0.0"
    },
    "basePath": "/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Slots", "description": "Slot availability and creation"},
        {"name": "Bookings", "description": "Visitor bookings and admin actions"}
    ],
    "paths": {
        "/available-slots": {
            "get": {
                "tags": ["Slots"],
                "summary": "List available slots",
                "description": "Slots on the date that are flagged available and not booked, ordered by id.",
                "produces": ["application/json"],
                "parameters": [
                    {"name": "date", "in": "query", "required": true, "type": "string", "format": "date"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/AvailableSlotsResponse"}},
                    "422": {"description": "Validation failed", "schema": {"$ref": "#/definitions/ValidationBody"}}
                }
            }
        },
        "/book-slot": {
            "post": {
                "tags": ["Bookings"],
                "summary": "Book a slot",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/BookSlotRequest"}}
                ],
                "responses": {
                    "201": {"description": "Booked", "schema": {"$ref": "#/definitions/BookSlotResponse"}},
                    "409": {"description": "Slot no longer available", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "422": {"description": "Validation failed", "schema": {"$ref": "#/definitions/ValidationBody"}},
                    "429": {"description": "Too many requests", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/create-slots": {
            "post": {
                "tags": ["Slots"],
                "summary": "Create time slots",
                "description": "Creates one slot per window for the date, owned by the caller.",
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateSlotsRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/CreateSlotsResponse"}},
                    "401": {"description": "Missing or invalid identity", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "422": {"description": "Validation failed", "schema": {"$ref": "#/definitions/ValidationBody"}}
                }
            }
        },
        "/bookings": {
            "get": {
                "tags": ["Bookings"],
                "summary": "List bookings for a date",
                "produces": ["application/json"],
                "parameters": [
                    {"name": "date", "in": "query", "required": true, "type": "string", "format": "date"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/BookingsResponse"}},
                    "422": {"description": "Validation failed", "schema": {"$ref": "#/definitions/ValidationBody"}}
                }
            }
        },
        "/bookings/export": {
            "get": {
                "tags": ["Bookings"],
                "summary": "Export bookings for a date",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "date", "in": "query", "required": true, "type": "string", "format": "date"},
                    {"name": "format", "in": "query", "required": false, "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "File download", "schema": {"type": "file"}},
                    "422": {"description": "Validation failed", "schema": {"$ref": "#/definitions/ValidationBody"}}
                }
            }
        },
        "/bookings/{id}": {
            "delete": {
                "tags": ["Bookings"],
                "summary": "Cancel a booking",
                "description": "Deletes the booking; its slot becomes available again.",
                "produces": ["application/json"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "Cancelled", "schema": {"$ref": "#/definitions/CancelBookingResponse"}},
                    "404": {"description": "Booking not found", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "422": {"description": "Invalid id", "schema": {"$ref": "#/definitions/ValidationBody"}}
                }
            }
        },
        "/bookings/{id}/reminders": {
            "post": {
                "tags": ["Bookings"],
                "summary": "Queue a reminder for a booking",
                "produces": ["application/json"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "202": {"description": "Queued", "schema": {"$ref": "#/definitions/ReminderResponse"}},
                    "404": {"description": "Booking not found", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        }
    },
    "definitions": {
        "AvailableSlot": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "start_time": {"type": "string", "example": "09:00"},
                "end_time": {"type": "string", "example": "09:30"}
            }
        },
        "AvailableSlotsResponse": {
            "type": "object",
            "properties": {
                "date": {"type": "string", "format": "date"},
                "slots": {"type": "array", "items": {"$ref": "#/definitions/AvailableSlot"}}
            }
        },
        "TimeSlot": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "owner_id": {"type": "string"},
                "date": {"type": "string", "format": "date"},
                "start_time": {"type": "string"},
                "end_time": {"type": "string"},
                "is_available": {"type": "boolean"},
                "created_at": {"type": "string", "format": "date-time"}
            }
        },
        "SlotWindow": {
            "type": "object",
            "required": ["start_time", "end_time"],
            "properties": {
                "start_time": {"type": "string", "example": "09:00"},
                "end_time": {"type": "string", "example": "09:30"}
            }
        },
        "CreateSlotsRequest": {
            "type": "object",
            "required": ["date", "slots"],
            "properties": {
                "date": {"type": "string", "format": "date"},
                "slots": {"type": "array", "minItems": 1, "maxItems": 100, "items": {"$ref": "#/definitions/SlotWindow"}}
            }
        },
        "CreateSlotsResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "slots": {"type": "array", "items": {"$ref": "#/definitions/TimeSlot"}}
            }
        },
        "BookSlotRequest": {
            "type": "object",
            "required": ["time_slot_id", "visitor_name", "visitor_email"],
            "properties": {
                "time_slot_id": {"type": "integer"},
                "visitor_name": {"type": "string", "maxLength": 255},
                "visitor_email": {"type": "string", "format": "email", "maxLength": 255},
                "notes": {"type": "string", "maxLength": 2000}
            }
        },
        "Booking": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "time_slot_id": {"type": "integer"},
                "visitor_name": {"type": "string"},
                "visitor_email": {"type": "string"},
                "notes": {"type": "string"},
                "created_at": {"type": "string", "format": "date-time"}
            }
        },
        "BookSlotResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string", "example": "Booking confirmed!"},
                "booking": {"$ref": "#/definitions/Booking"}
            }
        },
        "BookingRecord": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "visitor_name": {"type": "string"},
                "visitor_email": {"type": "string"},
                "notes": {"type": "string"},
                "date": {"type": "string", "format": "date"},
                "start_time": {"type": "string"},
                "end_time": {"type": "string"},
                "booked_at": {"type": "string", "example": "2025-02-27 10:00:00"}
            }
        },
        "BookingsResponse": {
            "type": "object",
            "properties": {
                "date": {"type": "string", "format": "date"},
                "bookings": {"type": "array", "items": {"$ref": "#/definitions/BookingRecord"}}
            }
        },
        "CancelBookingResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string", "example": "Booking cancelled"},
                "booking": {"$ref": "#/definitions/BookingRecord"}
            }
        },
        "BookingReminder": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "booking_id": {"type": "integer"},
                "status": {"type": "string", "enum": ["queued", "dispatched", "failed"]},
                "requested_by": {"type": "string"},
                "attempts": {"type": "integer"},
                "requested_at": {"type": "string", "format": "date-time"}
            }
        },
        "ReminderResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string", "example": "Reminder queued"},
                "reminder": {"$ref": "#/definitions/BookingReminder"}
            }
        },
        "ValidationBody": {
            "type": "object",
            "properties": {
                "message": {"type": "string", "example": "The given data was invalid."},
                "errors": {"type": "object", "additionalProperties": {"type": "array", "items": {"type": "string"}}}
            }
        },
        "ErrorBody": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "code": {"type": "string"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
