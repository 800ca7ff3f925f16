package directions

// tokyoRoute is one transit route on 2020-07-01 (JST, UTC+9):
// walk 08:03-08:05, JR line 08:05-08:40, walk 08:40-08:45.
const tokyoRoute = `{
  "summary": "",
  "legs": [{
    "departure_time": {"text": "8:03 AM", "time_zone": "Asia/Tokyo", "value": 1593558180},
    "arrival_time": {"text": "8:45 AM", "time_zone": "Asia/Tokyo", "value": 1593560700},
    "start_address": "1 Chome Marunouchi, Chiyoda City, Tokyo",
    "end_address": "Minatomirai, Nishi Ward, Yokohama",
    "start_location": {"lat": 35.6812, "lng": 139.7671},
    "end_location": {"lat": 35.4576, "lng": 139.6325},
    "steps": [
      {
        "travel_mode": "WALKING",
        "html_instructions": "Walk to Tokyo",
        "duration": {"text": "2 mins", "value": 120},
        "start_location": {"lat": 35.6812, "lng": 139.7671},
        "end_location": {"lat": 35.6813, "lng": 139.7670}
      },
      {
        "travel_mode": "TRANSIT",
        "duration": {"text": "35 mins", "value": 2100},
        "start_location": {"lat": 35.6813, "lng": 139.7670},
        "end_location": {"lat": 35.4660, "lng": 139.6223},
        "transit_details": {
          "departure_stop": {"name": "Tokyo", "location": {"lat": 35.6813, "lng": 139.7670}},
          "arrival_stop": {"name": "Yokohama", "location": {"lat": 35.4660, "lng": 139.6223}},
          "departure_time": {"text": "8:05 AM", "time_zone": "Asia/Tokyo", "value": 1593558300},
          "arrival_time": {"text": "8:40 AM", "time_zone": "Asia/Tokyo", "value": 1593560400},
          "headsign": "Odawara",
          "num_stops": 4,
          "line": {"name": "Tokaido Line", "short_name": "JT", "vehicle": {"name": "Train", "type": "HEAVY_RAIL"}}
        }
      },
      {
        "travel_mode": "WALKING",
        "duration": {"text": "5 mins", "value": 300},
        "start_location": {"lat": 35.4660, "lng": 139.6223},
        "end_location": {"lat": 35.4576, "lng": 139.6325}
      }
    ]
  }]
}`

const tokyoDirections = `{"status": "OK", "routes": [` + tokyoRoute + `]}`
