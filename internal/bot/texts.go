package bot

import (
	"fmt"
	"strings"
)

// Lang is a conversation language.
type Lang string

const (
	English Lang = "en"
	Persian Lang = "fa"
)

// ParseLang maps a configured language code to a Lang, defaulting to English.
func ParseLang(code string) Lang {
	if Lang(strings.ToLower(code)) == Persian {
		return Persian
	}
	return English
}

var texts = map[Lang]map[string]string{
	English: {
		"welcome":       "๑۞๑ Telegram account manager ๑۞๑\n\nChoose an option below.",
		"access_denied": "You are not allowed to use this bot.",
		"lang_changed":  "Language changed to English!",
		"working":       "⌛ Working, please wait...",
		"error":         "✗ Something went wrong. Please try again later.",
		"flood_wait":    "✗ Telegram asked to slow down. Try again in {seconds} seconds.",

		"btn_manager":       "♔ Manager ♔",
		"btn_add_account":   "♚ Add Account ♚",
		"btn_show_accounts": "♛ Show Accounts ♛",
		"btn_tools":         "♜ Account Tools ♜",
		"btn_send_message":  "♝ Send Message ♝",
		"btn_join_channel":  "♞ Join Channel ♞",
		"btn_send_reaction": "♟ Send Reaction ♟",
		"btn_back":          "← Back",
		"btn_home":          "⌂ Home",
		"btn_edit_profile":  "♕ Edit Profile ♕",
		"btn_change_2fa":    "♖ Change 2FA ♖",
		"btn_sessions":      "☠ Manage Sessions ☠",
		"btn_first_name":    "First Name",
		"btn_last_name":     "Last Name",
		"btn_username":      "Username",
		"btn_bio":           "Bio",
		"btn_set_password":  "☯ Set/Change Password ☯",
		"btn_view_sessions": "☣ View Active Sessions ☣",
		"btn_terminate_all": "☢ Terminate All Other Sessions ☢",
		"btn_terminate":     "⚡ Terminate #{number}",
		"btn_view":          "☛",
		"btn_delete":        "☒",
		"hdr_id":            "ID",
		"hdr_name":          "Name",
		"hdr_view":          "View",
		"hdr_delete":        "Delete",

		"accounts_title": "<b>All accounts</b>\n\nSelect an account to view or edit it.",
		"no_accounts":    "No accounts yet",
		"account_gone":   "✗ That account no longer exists.",
		"deleted":        "✓ Account {key} deleted.",
		"session_dead":   "✗ The stored session of this account is no longer valid. Delete it and log in again.",

		"add_intro":       "<b>Add a Telegram account</b>\n\n",
		"prompt_api_hash": "Enter the API hash of the account.",
		"prompt_api_id":   "Enter the API ID of the account.",
		"prompt_phone":    "Enter the phone number with country code.",
		"prompt_code":     "Enter the login code Telegram sent to the account.",
		"prompt_password": "The account has two-step verification. Enter its password.",
		"bad_api_id":      "✗ The API ID must be a positive number.",
		"bad_code":        "✗ That code is invalid.",
		"bad_password":    "✗ That password is wrong.",
		"login_failed":    "✗ Login failed: {error}",
		"account_added":   "✓ Account added as {key} ({name}).",

		"details": "<b>Account details</b>\n\n" +
			"<b>ID:</b> {id}\n<b>First name:</b> {first_name}\n<b>Last name:</b> {last_name}\n" +
			"<b>Username:</b> {username}\n<b>Phone:</b> {phone}\n<b>Bio:</b> {bio}\n" +
			"<b>Profile photo:</b> {has_photo}\n<b>Premium:</b> {premium}\n<b>Verified:</b> {verified}\n" +
			"<b>Restricted:</b> {restricted}\n<b>Active sessions:</b> {sessions}\n<b>2FA enabled:</b> {has_2fa}",
		"yes": "Yes",
		"no":  "No",

		"edit_title":          "<b>Edit profile</b>\n\nChoose what to change.",
		"prompt_first_name":   "Enter the new first name.",
		"prompt_last_name":    "Enter the new last name, or 'none' to remove it.",
		"prompt_username":     "Enter the new username.",
		"prompt_bio":          "Enter the new bio, or 'none' to remove it.",
		"profile_updated":     "✓ Profile updated.",
		"twofa_title":         "<b>Two-step verification</b>",
		"prompt_current_2fa":  "Enter the current 2FA password, or 'none' if there is none.",
		"prompt_new_2fa":      "Enter the new 2FA password.",
		"password_updated":    "✓ 2FA password updated.",
		"need_current_2fa":    "✗ The account already has a password; the current one is required.",
		"sessions_title":      "<b>Session management</b>",
		"sessions_header":     "<b>Active sessions</b>\n\n",
		"no_sessions":         "No active sessions found.",
		"session_number":      "<b>Session #{number}</b> {current}",
		"session_current":     "<b>CURRENT</b>",
		"session_device":      "Device: {device}",
		"session_platform":    "Platform: {platform} {system}",
		"session_app":         "App: {app} {version}",
		"session_created":     "Created: {date}",
		"session_active":      "Last active: {date}",
		"session_ip":          "IP: {ip}",
		"session_location":    "Location: {country}, {region}",
		"session_official":    "Official app",
		"session_pending":     "Password pending",
		"session_hash":        "<code>Session ID: {hash}</code>",
		"sessions_terminated": "✓ {count} session(s) terminated.",
		"session_stale":       "✗ That session list is outdated. Open it again.",
		"current_protected":   "✗ The current session cannot be terminated.",

		"prompt_msg_username": "Enter the username to message from every account.",
		"prompt_msg_text":     "Enter the message text.",
		"prompt_join":         "Enter the username of the channel to join.",
		"prompt_reaction":     "Enter the link of the message to react to.",
		"bad_link":            "✗ That is not a valid message link.",
		"broadcast_done":      "✓ {ok} of {total} accounts succeeded.",

		"help": "<b>Telegram account manager</b>\n\n" +
			"/start - show the main menu\n/help - show this help\n/eng - switch to English\n/fa - switch to Persian\n\n" +
			"<b>Accounts</b>: add accounts with API credentials and phone login, view and delete them.\n" +
			"<b>Profile</b>: edit first name, last name, username and bio.\n" +
			"<b>Security</b>: change the 2FA password, list and terminate active sessions.\n" +
			"<b>Bulk actions</b>: send a message, join a channel or react to a message with every account.\n\n" +
			"All menus are shown by editing a single message.",
	},
	Persian: {
		"welcome":       "๑۞๑ مدیریت حساب‌های تلگرام ๑۞๑\n\nلطفاً یک گزینه را انتخاب کنید.",
		"access_denied": "شما اجازه استفاده از این ربات را ندارید.",
		"lang_changed":  "زبان به فارسی تغییر کرد!",
		"working":       "⌛ در حال انجام، لطفاً صبر کنید...",
		"error":         "✗ خطایی رخ داد. لطفاً بعداً دوباره تلاش کنید.",
		"flood_wait":    "✗ تلگرام درخواست کاهش سرعت داد. {seconds} ثانیه دیگر تلاش کنید.",

		"btn_manager":       "♔ مدیریت ♔",
		"btn_add_account":   "♚ افزودن حساب ♚",
		"btn_show_accounts": "♛ نمایش حساب‌ها ♛",
		"btn_tools":         "♜ ابزارهای حساب ♜",
		"btn_send_message":  "♝ ارسال پیام ♝",
		"btn_join_channel":  "♞ عضویت در کانال ♞",
		"btn_send_reaction": "♟ ارسال واکنش ♟",
		"btn_back":          "بازگشت ←",
		"btn_home":          "⌂ خانه",
		"btn_edit_profile":  "♕ ویرایش پروفایل ♕",
		"btn_change_2fa":    "♖ تغییر رمز دو مرحله‌ای ♖",
		"btn_sessions":      "☠ مدیریت جلسات ☠",
		"btn_first_name":    "نام",
		"btn_last_name":     "نام خانوادگی",
		"btn_username":      "نام کاربری",
		"btn_bio":           "بیو",
		"btn_set_password":  "☯ تنظیم/تغییر رمز عبور ☯",
		"btn_view_sessions": "☣ مشاهده جلسات فعال ☣",
		"btn_terminate_all": "☢ خاتمه تمام جلسات دیگر ☢",
		"btn_terminate":     "⚡ خاتمه #{number}",
		"btn_view":          "☛",
		"btn_delete":        "☒",
		"hdr_id":            "شناسه",
		"hdr_name":          "نام",
		"hdr_view":          "مشاهده",
		"hdr_delete":        "حذف",

		"accounts_title": "<b>همه حساب‌ها</b>\n\nیک حساب را برای مشاهده یا ویرایش انتخاب کنید.",
		"no_accounts":    "هیچ حسابی وجود ندارد",
		"account_gone":   "✗ این حساب دیگر وجود ندارد.",
		"deleted":        "✓ حساب {key} حذف شد.",
		"session_dead":   "✗ نشست ذخیره شده این حساب دیگر معتبر نیست. آن را حذف کرده و دوباره وارد شوید.",

		"add_intro":       "<b>افزودن حساب تلگرام</b>\n\n",
		"prompt_api_hash": "لطفاً API hash حساب را وارد کنید.",
		"prompt_api_id":   "لطفاً API ID حساب را وارد کنید.",
		"prompt_phone":    "لطفاً شماره تلفن را با کد کشور وارد کنید.",
		"prompt_code":     "لطفاً کد ورود ارسال شده توسط تلگرام را وارد کنید.",
		"prompt_password": "این حساب تأیید دو مرحله‌ای دارد. رمز عبور را وارد کنید.",
		"bad_api_id":      "✗ API ID باید یک عدد مثبت باشد.",
		"bad_code":        "✗ کد نامعتبر است.",
		"bad_password":    "✗ رمز عبور اشتباه است.",
		"login_failed":    "✗ ورود ناموفق بود: {error}",
		"account_added":   "✓ حساب با کلید {key} اضافه شد ({name}).",

		"details": "<b>جزئیات حساب</b>\n\n" +
			"<b>شناسه:</b> {id}\n<b>نام:</b> {first_name}\n<b>نام خانوادگی:</b> {last_name}\n" +
			"<b>نام کاربری:</b> {username}\n<b>تلفن:</b> {phone}\n<b>بیو:</b> {bio}\n" +
			"<b>عکس پروفایل:</b> {has_photo}\n<b>پریمیوم:</b> {premium}\n<b>تأیید شده:</b> {verified}\n" +
			"<b>محدود شده:</b> {restricted}\n<b>جلسات فعال:</b> {sessions}\n<b>تأیید دو مرحله‌ای:</b> {has_2fa}",
		"yes": "بله",
		"no":  "خیر",

		"edit_title":          "<b>ویرایش پروفایل</b>\n\nمورد مورد نظر را انتخاب کنید.",
		"prompt_first_name":   "نام جدید را وارد کنید.",
		"prompt_last_name":    "نام خانوادگی جدید را وارد کنید، یا 'none' برای حذف آن.",
		"prompt_username":     "نام کاربری جدید را وارد کنید.",
		"prompt_bio":          "بیو جدید را وارد کنید، یا 'none' برای حذف آن.",
		"profile_updated":     "✓ پروفایل به‌روزرسانی شد.",
		"twofa_title":         "<b>تأیید دو مرحله‌ای</b>",
		"prompt_current_2fa":  "رمز فعلی را وارد کنید، یا 'none' اگر رمزی ندارد.",
		"prompt_new_2fa":      "رمز جدید را وارد کنید.",
		"password_updated":    "✓ رمز دو مرحله‌ای به‌روزرسانی شد.",
		"need_current_2fa":    "✗ این حساب رمز دارد؛ رمز فعلی لازم است.",
		"sessions_title":      "<b>مدیریت جلسات</b>",
		"sessions_header":     "<b>جلسات فعال</b>\n\n",
		"no_sessions":         "هیچ جلسه فعالی یافت نشد.",
		"session_number":      "<b>جلسه #{number}</b> {current}",
		"session_current":     "<b>جلسه فعلی</b>",
		"session_device":      "دستگاه: {device}",
		"session_platform":    "پلتفرم: {platform} {system}",
		"session_app":         "برنامه: {app} {version}",
		"session_created":     "ایجاد شده: {date}",
		"session_active":      "آخرین فعالیت: {date}",
		"session_ip":          "آی‌پی: {ip}",
		"session_location":    "موقعیت: {country}, {region}",
		"session_official":    "برنامه رسمی",
		"session_pending":     "رمز عبور در انتظار",
		"session_hash":        "<code>شناسه جلسه: {hash}</code>",
		"sessions_terminated": "✓ {count} جلسه خاتمه یافت.",
		"session_stale":       "✗ این فهرست جلسات قدیمی است. دوباره باز کنید.",
		"current_protected":   "✗ جلسه فعلی قابل خاتمه نیست.",

		"prompt_msg_username": "نام کاربری مقصد پیام را وارد کنید.",
		"prompt_msg_text":     "متن پیام را وارد کنید.",
		"prompt_join":         "نام کاربری کانال را وارد کنید.",
		"prompt_reaction":     "لینک پیام را برای واکنش وارد کنید.",
		"bad_link":            "✗ لینک پیام معتبر نیست.",
		"broadcast_done":      "✓ {ok} از {total} حساب موفق بودند.",

		"help": "<b>مدیریت حساب‌های تلگرام</b>\n\n" +
			"/start - نمایش منوی اصلی\n/help - نمایش راهنما\n/eng - تغییر زبان به انگلیسی\n/fa - تغییر زبان به فارسی\n\n" +
			"<b>حساب‌ها</b>: افزودن حساب با اطلاعات API و ورود با تلفن، مشاهده و حذف آن‌ها.\n" +
			"<b>پروفایل</b>: ویرایش نام، نام خانوادگی، نام کاربری و بیو.\n" +
			"<b>امنیت</b>: تغییر رمز دو مرحله‌ای، مشاهده و خاتمه جلسات فعال.\n" +
			"<b>اقدامات گروهی</b>: ارسال پیام، عضویت در کانال یا واکنش به پیام با همه حساب‌ها.\n\n" +
			"همه منوها با ویرایش یک پیام نمایش داده می‌شوند.",
	},
}

// T returns the text for key in lang with {name} placeholders replaced by
// the given name/value pairs. Missing keys fall back to English.
func T(lang Lang, key string, args ...any) string {
	text, ok := texts[lang][key]
	if !ok {
		text, ok = texts[English][key]
	}
	if !ok {
		return "missing text: " + key
	}
	if len(args) == 0 {
		return text
	}

	pairs := make([]string, 0, len(args))
	for i := 0; i+1 < len(args); i += 2 {
		pairs = append(pairs, "{"+fmt.Sprint(args[i])+"}", fmt.Sprint(args[i+1]))
	}
	return strings.NewReplacer(pairs...).Replace(text)
}
