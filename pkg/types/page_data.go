package types

type NavbarData struct {
	IsAuthenticated bool
	UserID          string
	UserEmail       string
	UserName        string
	Role            Role
	UnreadCount     int
}

type NavbarDataSetter interface {
	SetNavbarData(data NavbarData)
}

type BasePageData struct {
	Title  string
	Navbar NavbarData
}

func (d *BasePageData) SetNavbarData(data NavbarData) {
	d.Navbar = data
}

type HomePageData struct {
	BasePageData
	Notice string
	Error  string
	Items  []*FoodItem
}

type LoginPageData struct {
	BasePageData
	Email     string
	Error     string
	Confirmed bool
}

type RegisterPageData struct {
	BasePageData
	Name        string
	Email       string
	Role        string
	Error       string
	FieldErrors map[string]string
}

type ConfirmRegisterPageData struct {
	BasePageData
	Email string
	Error string
}

type BrowsePageData struct {
	BasePageData
	Items         []*FoodItem
	FoodTypes     []string
	Locations     []string
	SelectedType  string
	SelectedPlace string
}

type FoodDetailPageData struct {
	BasePageData
	Item   *FoodItem
	Task   *Task
	Notice string
	Error  string
}

type NewDonationPageData struct {
	BasePageData
	Form        DonationForm
	Error       string
	FieldErrors map[string]string
}

// DonationForm carries the new-donation POST body. Times are parsed by
// the handler before the engine sees them.
type DonationForm struct {
	Title          string `form:"title"`
	Description    string `form:"description"`
	Quantity       string `form:"quantity"`
	FoodType       string `form:"food_type"`
	ExpiryDate     string `form:"expiry_date"`
	PickupLocation string `form:"pickup_location"`
	PickupTimeFrom string `form:"pickup_time_from"`
	PickupTimeTo   string `form:"pickup_time_to"`
}

type MyDonationsPageData struct {
	BasePageData
	Items  []*FoodItem
	Notice string
	Error  string
}

type TaskView struct {
	Task *Task
	Item *FoodItem
}

type TasksPageData struct {
	BasePageData
	Open      []TaskView
	Active    []TaskView
	Completed []TaskView
	Notice    string
	Error     string
}

type NotificationsPageData struct {
	BasePageData
	Notifications []*Notification
	UnreadCount   int
}
